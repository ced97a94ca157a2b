package layers

import (
	"fmt"
	"math"

	"ariann_lib/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// uniformFill fills t from U(-1/sqrt(fanIn), 1/sqrt(fanIn)), which is what
// torch's default kaiming-uniform init reduces to for Linear and Conv2d.
func uniformFill(t *tensor.Tensor, fanIn int, src rand.Source) {
	bound := 1 / math.Sqrt(float64(fanIn))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	for i := range t.Data {
		t.Data[i] = dist.Rand()
	}
}

func fill(t *tensor.Tensor, v float64) {
	for i := range t.Data {
		t.Data[i] = v
	}
}

// lazySource is shared by every layer that materializes its parameters on
// first use, so same-shaped layers get different values.
var lazySource = newLazySource()

func newLazySource() *rand.LockedSource {
	src := &rand.LockedSource{}
	src.Seed(1)
	return src
}

func defaultSource() rand.Source {
	return lazySource
}

// loadInto copies src into *dst after checking the shape, allocating *dst
// if needed.
func loadInto(tag, name string, dst **tensor.Tensor, src *tensor.Tensor, shape ...int) error {
	if src == nil {
		return nil
	}
	if !tensor.SameShape(src.Shape, shape) {
		return &ShapeError{Layer: tag, Param: name, Want: shape, Got: src.Shape}
	}
	if *dst == nil {
		*dst = tensor.New(shape...)
	}
	copy((*dst).Data, src.Data)
	return nil
}

// ShapeError reports a parameter whose shape does not match the layer.
type ShapeError struct {
	Layer string
	Param string
	Want  []int
	Got   []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s shape mismatch: want %v, got %v", e.Layer, e.Param, e.Want, e.Got)
}
