package layers

import (
	"fmt"
	"math"

	"ariann_lib/tensor"

	"golang.org/x/exp/rand"
)

// BatchNorm2D normalizes each channel of a [C,H,W] input with its running
// statistics (inference-mode batch norm), followed by a per-channel affine.
type BatchNorm2D struct {
	C   int
	Eps float64

	Weight, Bias            *tensor.Tensor
	RunningMean, RunningVar *tensor.Tensor

	lastInput    *tensor.Tensor
	gradW, gradB *tensor.Tensor
}

// NewBatchNorm2D returns a batch norm over c channels with eps=1e-5.
func NewBatchNorm2D(c int) *BatchNorm2D {
	return &BatchNorm2D{C: c, Eps: 1e-5}
}

func (b *BatchNorm2D) Materialized() bool {
	return b.Weight != nil && b.Bias != nil && b.RunningMean != nil && b.RunningVar != nil
}

func (b *BatchNorm2D) ensureParams() { b.InitMissing(nil) }

// InitParams resets to the identity transform; src is unused.
func (b *BatchNorm2D) InitParams(src rand.Source) {
	b.Weight, b.Bias, b.RunningMean, b.RunningVar = nil, nil, nil, nil
	b.InitMissing(src)
}

// InitMissing sets the nil tensors to their identity values.
func (b *BatchNorm2D) InitMissing(rand.Source) {
	for _, p := range []struct {
		dst **tensor.Tensor
		v   float64
	}{{&b.Weight, 1}, {&b.Bias, 0}, {&b.RunningMean, 0}, {&b.RunningVar, 1}} {
		if *p.dst == nil {
			*p.dst = tensor.New(b.C)
			fill(*p.dst, p.v)
		}
	}
}

func (b *BatchNorm2D) NumParams() int { return 2 * b.C }

func (b *BatchNorm2D) State() map[string]*tensor.Tensor {
	b.ensureParams()
	return map[string]*tensor.Tensor{
		"weight":       b.Weight,
		"bias":         b.Bias,
		"running_mean": b.RunningMean,
		"running_var":  b.RunningVar,
	}
}

func (b *BatchNorm2D) LoadState(state map[string]*tensor.Tensor) error {
	for name, dst := range map[string]**tensor.Tensor{
		"weight":       &b.Weight,
		"bias":         &b.Bias,
		"running_mean": &b.RunningMean,
		"running_var":  &b.RunningVar,
	} {
		if err := loadInto(b.Tag(), name, dst, state[name], b.C); err != nil {
			return err
		}
	}
	return nil
}

func (b *BatchNorm2D) OutputShape(in []int) ([]int, error) {
	if _, _, _, err := chw(b.Tag(), in, b.C); err != nil {
		return nil, err
	}
	return append([]int(nil), in...), nil
}

// scale returns weight/sqrt(var+eps) for channel c.
func (b *BatchNorm2D) scale(c int) float64 {
	return b.Weight.Data[c] / math.Sqrt(b.RunningVar.Data[c]+b.Eps)
}

func (b *BatchNorm2D) Forward(x interface{}) (interface{}, error) {
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	if _, err := b.OutputShape(t.Shape); err != nil {
		return nil, err
	}
	b.ensureParams()
	b.lastInput = t.Clone()
	plane := t.Shape[1] * t.Shape[2]
	out := tensor.New(t.Shape...)
	for c := 0; c < b.C; c++ {
		s, mean, shift := b.scale(c), b.RunningMean.Data[c], b.Bias.Data[c]
		for i := c * plane; i < (c+1)*plane; i++ {
			out.Data[i] = (t.Data[i]-mean)*s + shift
		}
	}
	return out, nil
}

func (b *BatchNorm2D) Backward(g interface{}) (interface{}, error) {
	grad, err := asTensor(g)
	if err != nil {
		return nil, err
	}
	if b.lastInput == nil {
		return nil, fmt.Errorf("%s: no cached input for backward pass", b.Tag())
	}
	if len(grad.Data) != len(b.lastInput.Data) {
		return nil, fmt.Errorf("%s: gradient has %d values, want %d", b.Tag(), len(grad.Data), len(b.lastInput.Data))
	}
	plane := b.lastInput.Shape[1] * b.lastInput.Shape[2]
	gradIn := tensor.New(b.lastInput.Shape...)
	b.gradW, b.gradB = tensor.New(b.C), tensor.New(b.C)
	for c := 0; c < b.C; c++ {
		s := b.scale(c)
		inv := 1 / math.Sqrt(b.RunningVar.Data[c]+b.Eps)
		for i := c * plane; i < (c+1)*plane; i++ {
			gradIn.Data[i] = grad.Data[i] * s
			b.gradW.Data[c] += grad.Data[i] * (b.lastInput.Data[i] - b.RunningMean.Data[c]) * inv
			b.gradB.Data[c] += grad.Data[i]
		}
	}
	return gradIn, nil
}

func (b *BatchNorm2D) Update(lr float64) error {
	if b.gradW == nil {
		return nil
	}
	for c := 0; c < b.C; c++ {
		b.Weight.Data[c] -= lr * b.gradW.Data[c]
		b.Bias.Data[c] -= lr * b.gradB.Data[c]
	}
	return nil
}

func (b *BatchNorm2D) Encrypted() bool { return false }
func (b *BatchNorm2D) Levels() int     { return 0 }

func (b *BatchNorm2D) Tag() string { return fmt.Sprintf("BatchNorm2D_%d", b.C) }
