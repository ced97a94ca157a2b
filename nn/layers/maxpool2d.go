package layers

import (
	"fmt"
	"math"

	"ariann_lib/tensor"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// MaxPool2D takes the maximum over K×K windows of a [C,H,W] input. Padded
// positions never win. Max cannot be evaluated under CKKS, so the layer is
// always plaintext.
type MaxPool2D struct {
	K, Stride, Padding int

	argmax  []int // input offset chosen for each output element
	inShape []int
}

// NewMaxPool2D returns a pooling layer with the given kernel and stride.
func NewMaxPool2D(k, stride int) *MaxPool2D {
	return &MaxPool2D{K: k, Stride: stride}
}

// WithPadding sets the padding and returns p.
func (p *MaxPool2D) WithPadding(pad int) *MaxPool2D { p.Padding = pad; return p }

func (p *MaxPool2D) OutputShape(in []int) ([]int, error) {
	c, h, w, err := chw(p.Tag(), in, 0)
	if err != nil {
		return nil, err
	}
	if 2*p.Padding > p.K {
		return nil, fmt.Errorf("%s: padding should be at most half of kernel size", p.Tag())
	}
	oh, err := windowOut(p.Tag(), h, p.K, p.Stride, p.Padding)
	if err != nil {
		return nil, err
	}
	ow, err := windowOut(p.Tag(), w, p.K, p.Stride, p.Padding)
	if err != nil {
		return nil, err
	}
	return []int{c, oh, ow}, nil
}

func (p *MaxPool2D) Forward(x interface{}) (interface{}, error) {
	if _, ok := x.(*rlwe.Ciphertext); ok {
		return nil, fmt.Errorf("%s cannot be evaluated on ciphertexts", p.Tag())
	}
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	shape, err := p.OutputShape(t.Shape)
	if err != nil {
		return nil, err
	}
	C, H, W := t.Shape[0], t.Shape[1], t.Shape[2]
	OH, OW := shape[1], shape[2]
	out := tensor.New(shape...)
	p.argmax = make([]int, len(out.Data))
	p.inShape = append([]int(nil), t.Shape...)

	for c := 0; c < C; c++ {
		for oy := 0; oy < OH; oy++ {
			for ox := 0; ox < OW; ox++ {
				best, bestIdx := math.Inf(-1), -1
				for ky := 0; ky < p.K; ky++ {
					iy := oy*p.Stride + ky - p.Padding
					if iy < 0 || iy >= H {
						continue
					}
					for kx := 0; kx < p.K; kx++ {
						ix := ox*p.Stride + kx - p.Padding
						if ix < 0 || ix >= W {
							continue
						}
						idx := (c*H+iy)*W + ix
						if bestIdx < 0 || t.Data[idx] > best {
							best, bestIdx = t.Data[idx], idx
						}
					}
				}
				o := (c*OH+oy)*OW + ox
				out.Data[o] = best
				p.argmax[o] = bestIdx
			}
		}
	}
	return out, nil
}

// Backward routes each gradient to the input that won the window.
func (p *MaxPool2D) Backward(g interface{}) (interface{}, error) {
	grad, err := asTensor(g)
	if err != nil {
		return nil, err
	}
	if p.argmax == nil {
		return nil, fmt.Errorf("%s: no cached input for backward pass", p.Tag())
	}
	if len(grad.Data) != len(p.argmax) {
		return nil, fmt.Errorf("%s: gradient has %d values, want %d", p.Tag(), len(grad.Data), len(p.argmax))
	}
	gradIn := tensor.New(p.inShape...)
	for o, idx := range p.argmax {
		gradIn.Data[idx] += grad.Data[o]
	}
	return gradIn, nil
}

func (p *MaxPool2D) Update(lr float64) error { return nil }
func (p *MaxPool2D) Encrypted() bool         { return false }
func (p *MaxPool2D) Levels() int             { return 0 }

func (p *MaxPool2D) Tag() string {
	return fmt.Sprintf("MaxPool2D_k%d_s%d_p%d", p.K, p.Stride, p.Padding)
}
