package nn

import (
	"fmt"

	"ariann_lib/tensor"

	"golang.org/x/exp/rand"
)

// Shaper is implemented by modules that can compute their output shape
// without running a forward pass.
type Shaper interface {
	OutputShape(in []int) ([]int, error)
}

// InferShape returns m's output shape for an input of shape in.
func InferShape(m Module, in []int) ([]int, error) {
	s, ok := m.(Shaper)
	if !ok {
		return nil, fmt.Errorf("%s does not support shape inference", m.Tag())
	}
	return s.OutputShape(in)
}

// Parameterized is implemented by layers that own parameters or buffers.
// Parameters are allocated lazily; State materializes them.
type Parameterized interface {
	NumParams() int
	Materialized() bool
	InitParams(src rand.Source)
	// InitMissing initializes only the tensors not yet set.
	InitMissing(src rand.Source)
	State() map[string]*tensor.Tensor
	LoadState(state map[string]*tensor.Tensor) error
}

// NumParams counts the parameters of every leaf under m.
func NumParams(m Module) int {
	total := 0
	_ = Walk("", m, func(_ string, leaf Module) error {
		if p, ok := leaf.(Parameterized); ok {
			total += p.NumParams()
		}
		return nil
	})
	return total
}

// InitParams initializes every parameterized leaf under m from src.
func InitParams(m Module, src rand.Source) {
	_ = Walk("", m, func(_ string, leaf Module) error {
		if p, ok := leaf.(Parameterized); ok {
			p.InitParams(src)
		}
		return nil
	})
}

// InitMissing initializes the parameter tensors under m that are not set
// yet, leaving loaded ones untouched.
func InitMissing(m Module, src rand.Source) {
	_ = Walk("", m, func(_ string, leaf Module) error {
		if p, ok := leaf.(Parameterized); ok && !p.Materialized() {
			p.InitMissing(src)
		}
		return nil
	})
}
