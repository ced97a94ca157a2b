package nn

import (
	"fmt"
	"strconv"
	"strings"
)

// Module defines a single layer/unit in the network.
type Module interface {
	Forward(input interface{}) (interface{}, error)
	// Backward computes gradients and propagates them.
	// It takes the gradient of the loss with respect to the module's output,
	// and returns the gradient of the loss with respect to the module's input.
	Backward(gradOut interface{}) (interface{}, error)
	Update(lr float64) error
	Encrypted() bool
	Levels() int
	Tag() string
}

// Child is a named sub-module of a container.
type Child struct {
	Name   string
	Module Module
}

// Container is implemented by modules that are built from other modules.
type Container interface {
	Children() []Child
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Layers []Module
}

// NewSequential returns a Sequential over the given layers.
func NewSequential(layers ...Module) *Sequential {
	return &Sequential{Layers: layers}
}

// Len returns the number of layers.
func (s *Sequential) Len() int { return len(s.Layers) }

// At returns layer i.
func (s *Sequential) At(i int) Module { return s.Layers[i] }

// Set replaces layer i.
func (s *Sequential) Set(i int, m Module) { s.Layers[i] = m }

// Swap exchanges layers i and j.
func (s *Sequential) Swap(i, j int) { s.Layers[i], s.Layers[j] = s.Layers[j], s.Layers[i] }

// Append adds layers at the end.
func (s *Sequential) Append(layers ...Module) { s.Layers = append(s.Layers, layers...) }

// Forward applies each layer in sequence.
func (s *Sequential) Forward(x interface{}) (interface{}, error) {
	var err error
	out := x
	for i, layer := range s.Layers {
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Tag(), err)
		}
	}
	return out, nil
}

// Backward applies Backward in reverse order.
func (s *Sequential) Backward(grad interface{}) (interface{}, error) {
	var err error
	out := grad
	for i := len(s.Layers) - 1; i >= 0; i-- {
		out, err = s.Layers[i].Backward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, s.Layers[i].Tag(), err)
		}
	}
	return out, nil
}

// Update applies a gradient step to every layer.
func (s *Sequential) Update(lr float64) error {
	for _, layer := range s.Layers {
		if err := layer.Update(lr); err != nil {
			return err
		}
	}
	return nil
}

// Levels sums Levels() of all layers.
func (s *Sequential) Levels() int {
	sum := 0
	for _, layer := range s.Layers {
		sum += layer.Levels()
	}
	return sum
}

// Encrypted returns true if any layer is encrypted.
func (s *Sequential) Encrypted() bool {
	for _, layer := range s.Layers {
		if layer.Encrypted() {
			return true
		}
	}
	return false
}

// Tag lists the tags of the layers.
func (s *Sequential) Tag() string {
	tags := make([]string, len(s.Layers))
	for i, layer := range s.Layers {
		tags[i] = layer.Tag()
	}
	return "Sequential[" + strings.Join(tags, ",") + "]"
}

// Children names layers by their index, like a torch Sequential.
func (s *Sequential) Children() []Child {
	out := make([]Child, len(s.Layers))
	for i, layer := range s.Layers {
		out[i] = Child{Name: strconv.Itoa(i), Module: layer}
	}
	return out
}

// OutputShape propagates in through every layer.
func (s *Sequential) OutputShape(in []int) ([]int, error) {
	shape := in
	for i, layer := range s.Layers {
		var err error
		shape, err = InferShape(layer, shape)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Tag(), err)
		}
	}
	return shape, nil
}

// Walk calls fn for every leaf module under m, depth first, with its
// dotted path (e.g. "features.0", "layer1.0.conv1").
func Walk(prefix string, m Module, fn func(path string, m Module) error) error {
	c, ok := m.(Container)
	if !ok {
		return fn(prefix, m)
	}
	for _, child := range c.Children() {
		path := child.Name
		if prefix != "" {
			path = prefix + "." + child.Name
		}
		if err := Walk(path, child.Module, fn); err != nil {
			return err
		}
	}
	return nil
}
