package layers

import "fmt"

// Identity passes its input through. It stands in for stages that have
// been removed from a stock architecture (e.g. an adaptive pool).
type Identity struct{}

func NewIdentity() *Identity { return &Identity{} }

func (Identity) Forward(x interface{}) (interface{}, error)  { return x, nil }
func (Identity) Backward(g interface{}) (interface{}, error) { return g, nil }
func (Identity) OutputShape(in []int) ([]int, error)         { return append([]int(nil), in...), nil }
func (Identity) Update(float64) error                        { return nil }
func (Identity) Encrypted() bool                             { return false }
func (Identity) Levels() int                                 { return 0 }
func (Identity) Tag() string                                 { return "Identity" }

// Dropout keeps the stock architectures' layer indices intact. Models are
// only evaluated in inference mode, where dropout is the identity.
type Dropout struct {
	P float64
}

func NewDropout(p float64) *Dropout { return &Dropout{P: p} }

func (d *Dropout) Forward(x interface{}) (interface{}, error)  { return x, nil }
func (d *Dropout) Backward(g interface{}) (interface{}, error) { return g, nil }
func (d *Dropout) OutputShape(in []int) ([]int, error)         { return append([]int(nil), in...), nil }
func (d *Dropout) Update(float64) error                        { return nil }
func (d *Dropout) Encrypted() bool                             { return false }
func (d *Dropout) Levels() int                                 { return 0 }
func (d *Dropout) Tag() string                                 { return fmt.Sprintf("Dropout_%.2g", d.P) }

// IsMaxPool reports whether m is a max-pooling layer.
func IsMaxPool(m interface{}) bool {
	_, ok := m.(*MaxPool2D)
	return ok
}
