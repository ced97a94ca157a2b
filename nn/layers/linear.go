package layers

import (
	"fmt"

	"ariann_lib/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Linear is a fully-connected layer y = x·Wᵀ + b.
//
// W ([Out, In]) and B ([Out]) stay nil until InitParams, LoadState or the
// first Forward, so large heads cost nothing to describe.
type Linear struct {
	In, Out int
	W, B    *tensor.Tensor

	lastInput *tensor.Tensor // [N, In]
	flatInput bool           // input was 1-D
	gradW     *tensor.Tensor
	gradB     *tensor.Tensor
}

// NewLinear describes an inDim→outDim fully-connected layer.
func NewLinear(inDim, outDim int) *Linear {
	return &Linear{In: inDim, Out: outDim}
}

func (l *Linear) Materialized() bool { return l.W != nil && l.B != nil }

func (l *Linear) ensureParams() { l.InitMissing(defaultSource()) }

// InitParams draws W and B from torch's default uniform distribution.
func (l *Linear) InitParams(src rand.Source) {
	l.W, l.B = nil, nil
	l.InitMissing(src)
}

// InitMissing draws only the tensors that are still nil.
func (l *Linear) InitMissing(src rand.Source) {
	if l.W == nil {
		l.W = tensor.New(l.Out, l.In)
		uniformFill(l.W, l.In, src)
	}
	if l.B == nil {
		l.B = tensor.New(l.Out)
		uniformFill(l.B, l.In, src)
	}
}

func (l *Linear) NumParams() int { return l.Out*l.In + l.Out }

func (l *Linear) State() map[string]*tensor.Tensor {
	l.ensureParams()
	return map[string]*tensor.Tensor{"weight": l.W, "bias": l.B}
}

func (l *Linear) LoadState(state map[string]*tensor.Tensor) error {
	if err := loadInto(l.Tag(), "weight", &l.W, state["weight"], l.Out, l.In); err != nil {
		return err
	}
	if err := loadInto(l.Tag(), "bias", &l.B, state["bias"], l.Out); err != nil {
		return err
	}
	return nil
}

// OutputShape accepts [In] or [N, In].
func (l *Linear) OutputShape(in []int) ([]int, error) {
	switch {
	case len(in) == 1 && in[0] == l.In:
		return []int{l.Out}, nil
	case len(in) == 2 && in[1] == l.In:
		return []int{in[0], l.Out}, nil
	}
	return nil, fmt.Errorf("%s expects [%d] or [N,%d] input, got %v", l.Tag(), l.In, l.In, in)
}

func (l *Linear) Forward(x interface{}) (interface{}, error) {
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	if _, err := l.OutputShape(t.Shape); err != nil {
		return nil, err
	}
	l.ensureParams()

	n := 1
	if len(t.Shape) == 2 {
		n = t.Shape[0]
	}
	l.flatInput = len(t.Shape) == 1
	l.lastInput = &tensor.Tensor{Data: append([]float64(nil), t.Data...), Shape: []int{n, l.In}}

	out := tensor.New(n, l.Out)
	dst := mat.NewDense(n, l.Out, out.Data)
	dst.Mul(l.lastInput.Dense(), l.W.Dense().T())
	for i := 0; i < n; i++ {
		row := out.Data[i*l.Out : (i+1)*l.Out]
		for j := range row {
			row[j] += l.B.Data[j]
		}
	}
	if l.flatInput {
		out.Shape = []int{l.Out}
	}
	return out, nil
}

func (l *Linear) Backward(gradOut interface{}) (interface{}, error) {
	g, err := asTensor(gradOut)
	if err != nil {
		return nil, err
	}
	if l.lastInput == nil {
		return nil, fmt.Errorf("%s: no cached input for backward pass", l.Tag())
	}
	n := l.lastInput.Shape[0]
	if len(g.Data) != n*l.Out {
		return nil, fmt.Errorf("%s: gradient has %d values, want %d", l.Tag(), len(g.Data), n*l.Out)
	}
	gm := mat.NewDense(n, l.Out, g.Data)

	l.gradW = tensor.New(l.Out, l.In)
	l.gradW.Dense().Mul(gm.T(), l.lastInput.Dense())
	l.gradB = tensor.New(l.Out)
	for i := 0; i < n; i++ {
		for j := 0; j < l.Out; j++ {
			l.gradB.Data[j] += g.Data[i*l.Out+j]
		}
	}

	gradIn := tensor.New(n, l.In)
	gradIn.Dense().Mul(gm, l.W.Dense())
	if l.flatInput {
		gradIn.Shape = []int{l.In}
	}
	return gradIn, nil
}

func (l *Linear) Update(lr float64) error {
	if l.gradW == nil {
		return nil
	}
	for i := range l.W.Data {
		l.W.Data[i] -= lr * l.gradW.Data[i]
	}
	for i := range l.B.Data {
		l.B.Data[i] -= lr * l.gradB.Data[i]
	}
	return nil
}

func (l *Linear) Encrypted() bool { return false }
func (l *Linear) Levels() int     { return 0 }

func (l *Linear) Tag() string {
	return fmt.Sprintf("Linear_%dx%d", l.In, l.Out)
}
