package layers

import (
	"fmt"

	"ariann_lib/tensor"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// Flatten layer: reshapes tensor to 1D (plain), no-op for HE, where values
// already sit in a flat slot vector.
type Flatten struct {
	inShape []int
}

func NewFlatten() *Flatten { return &Flatten{} }

func (f *Flatten) OutputShape(in []int) ([]int, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("Flatten: empty input shape")
	}
	return []int{tensor.Numel(in)}, nil
}

func (f *Flatten) Forward(x interface{}) (interface{}, error) {
	switch v := x.(type) {
	case *rlwe.Ciphertext:
		return v, nil
	case []*rlwe.Ciphertext:
		if len(v) == 1 {
			return v[0], nil
		}
		return nil, fmt.Errorf("Flatten: HE input slice length %d > 1 not supported yet", len(v))
	}
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	f.inShape = append([]int(nil), t.Shape...)
	y := tensor.New(len(t.Data))
	copy(y.Data, t.Data)
	return y, nil
}

func (f *Flatten) Backward(g interface{}) (interface{}, error) {
	t, ok := g.(*tensor.Tensor)
	if !ok || f.inShape == nil {
		return g, nil
	}
	return t.Reshape(f.inShape...)
}

func (f *Flatten) Update(float64) error { return nil }
func (f *Flatten) Encrypted() bool      { return false }
func (f *Flatten) Levels() int          { return 0 }
func (f *Flatten) Tag() string          { return "Flatten" }
