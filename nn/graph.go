package nn

import (
	"fmt"
	"strings"
)

// Graph is an ordered set of named stages executed one after the other,
// the shape torchvision models have: named attributes called in a fixed
// order by forward. Replacing a stage keeps its position.
type Graph struct {
	stages []Child
}

// NewGraph returns a graph over the given stages. Stage names must be
// unique.
func NewGraph(stages ...Child) *Graph {
	g := &Graph{}
	for _, s := range stages {
		if g.index(s.Name) >= 0 {
			panic(fmt.Sprintf("nn: duplicate stage %q", s.Name))
		}
		g.stages = append(g.stages, s)
	}
	return g
}

func (g *Graph) index(name string) int {
	for i, s := range g.stages {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the module of the named stage.
func (g *Graph) Get(name string) (Module, bool) {
	i := g.index(name)
	if i < 0 {
		return nil, false
	}
	return g.stages[i].Module, true
}

// Set replaces the module of an existing stage.
func (g *Graph) Set(name string, m Module) error {
	i := g.index(name)
	if i < 0 {
		return fmt.Errorf("nn: no stage %q", name)
	}
	g.stages[i].Module = m
	return nil
}

// Names returns the stage names in execution order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.stages))
	for i, s := range g.stages {
		out[i] = s.Name
	}
	return out
}

func (g *Graph) Children() []Child {
	return append([]Child(nil), g.stages...)
}

func (g *Graph) Forward(x interface{}) (interface{}, error) {
	var err error
	out := x
	for _, s := range g.stages {
		if out, err = s.Module.Forward(out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return out, nil
}

func (g *Graph) Backward(grad interface{}) (interface{}, error) {
	var err error
	out := grad
	for i := len(g.stages) - 1; i >= 0; i-- {
		if out, err = g.stages[i].Module.Backward(out); err != nil {
			return nil, fmt.Errorf("%s: %w", g.stages[i].Name, err)
		}
	}
	return out, nil
}

func (g *Graph) Update(lr float64) error {
	for _, s := range g.stages {
		if err := s.Module.Update(lr); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) Encrypted() bool {
	for _, s := range g.stages {
		if s.Module.Encrypted() {
			return true
		}
	}
	return false
}

func (g *Graph) Levels() int {
	sum := 0
	for _, s := range g.stages {
		sum += s.Module.Levels()
	}
	return sum
}

func (g *Graph) Tag() string {
	return "Graph[" + strings.Join(g.Names(), ",") + "]"
}

func (g *Graph) OutputShape(in []int) ([]int, error) {
	shape := in
	for _, s := range g.stages {
		var err error
		if shape, err = InferShape(s.Module, shape); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return shape, nil
}

// Units lists the modules a forward pass over m runs in order, expanding
// Graph and Sequential containers. Other containers, such as residual
// blocks, are kept whole since their children do not run in a line.
func Units(prefix string, m Module) []Child {
	var c Container
	switch v := m.(type) {
	case *Graph:
		c = v
	case *Sequential:
		c = v
	default:
		return []Child{{Name: prefix, Module: m}}
	}
	var out []Child
	for _, child := range c.Children() {
		path := child.Name
		if prefix != "" {
			path = prefix + "." + child.Name
		}
		out = append(out, Units(path, child.Module)...)
	}
	return out
}
