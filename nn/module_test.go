package nn

import (
	"errors"
	"testing"

	"ariann_lib/tensor"

	"github.com/stretchr/testify/require"
)

// dummy layer: adds a constant
type addLayer struct{ c float64 }

func (l *addLayer) Forward(input interface{}) (interface{}, error) {
	x, ok := input.(*tensor.Tensor)
	if !ok {
		return nil, errors.New("addLayer expects *tensor.Tensor input")
	}
	out := x.Clone()
	for i := range out.Data {
		out.Data[i] += l.c
	}
	return out, nil
}
func (l *addLayer) Backward(gradOut interface{}) (interface{}, error) { return gradOut, nil }
func (l *addLayer) Update(float64) error                              { return nil }
func (l *addLayer) Levels() int                                       { return 1 }
func (l *addLayer) Encrypted() bool                                   { return false }
func (l *addLayer) Tag() string                                       { return "add" }
func (l *addLayer) OutputShape(in []int) ([]int, error)               { return in, nil }

// dummy layer: error on forward, no shape inference
type errLayer struct{}

func (l *errLayer) Forward(input interface{}) (interface{}, error) {
	return nil, errors.New("fail")
}
func (l *errLayer) Backward(gradOut interface{}) (interface{}, error) { return nil, nil }
func (l *errLayer) Update(float64) error                              { return nil }
func (l *errLayer) Levels() int                                       { return 0 }
func (l *errLayer) Encrypted() bool                                   { return true }
func (l *errLayer) Tag() string                                       { return "err" }

func TestSequentialPlain(t *testing.T) {
	a := tensor.New(1)
	a.Data[0] = 1
	seq := NewSequential(&addLayer{c: 2}, &addLayer{c: 3})
	outAny, err := seq.Forward(a)
	require.NoError(t, err)
	out, ok := outAny.(*tensor.Tensor)
	require.True(t, ok, "expected *tensor.Tensor output, got %T", outAny)
	require.Equal(t, 6.0, out.Data[0])
	require.Equal(t, "Sequential[add,add]", seq.Tag())
}

func TestSequentialForwardErrorNamesLayer(t *testing.T) {
	seq := NewSequential(&addLayer{}, &errLayer{})
	_, err := seq.Forward(tensor.New(1))
	require.EqualError(t, err, "layer 1 (err): fail")
}

func TestSequentialLevelsEncrypted(t *testing.T) {
	seq := &Sequential{Layers: []Module{&addLayer{c: 0}, &errLayer{}}}
	require.Equal(t, 1, seq.Levels())
	require.True(t, seq.Encrypted())
}

func TestSequentialEditing(t *testing.T) {
	a, b, c := &addLayer{c: 1}, &addLayer{c: 2}, &addLayer{c: 3}
	seq := NewSequential(a, b)
	seq.Append(c)
	seq.Swap(0, 2)
	require.Equal(t, 3, seq.Len())
	require.Same(t, c, seq.At(0))
	require.Same(t, a, seq.At(2))
	seq.Set(1, a)
	require.Same(t, a, seq.At(1))
}

func TestSequentialOutputShape(t *testing.T) {
	seq := NewSequential(&addLayer{}, &addLayer{})
	shape, err := seq.OutputShape([]int{3, 4})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, shape)

	_, err = NewSequential(&addLayer{}, &errLayer{}).OutputShape([]int{1})
	require.Error(t, err)
}

func TestWalkNestedPaths(t *testing.T) {
	inner := NewSequential(&addLayer{}, &addLayer{})
	outer := NewSequential(&addLayer{}, inner)
	var paths []string
	require.NoError(t, Walk("features", outer, func(path string, _ Module) error {
		paths = append(paths, path)
		return nil
	}))
	require.Equal(t, []string{"features.0", "features.1.0", "features.1.1"}, paths)
}
