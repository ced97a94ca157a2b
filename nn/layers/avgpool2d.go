package layers

import (
	"fmt"

	"ariann_lib/tensor"
)

// AdaptiveAvgPool2D averages a [C,H,W] input down to [C,OutH,OutW] using
// torch's bin boundaries: bin i covers [floor(i*H/OutH), ceil((i+1)*H/OutH)).
type AdaptiveAvgPool2D struct {
	OutH, OutW int

	inShape []int
}

// NewAdaptiveAvgPool2D returns a pool producing outH×outW planes.
func NewAdaptiveAvgPool2D(outH, outW int) *AdaptiveAvgPool2D {
	return &AdaptiveAvgPool2D{OutH: outH, OutW: outW}
}

func binStart(i, in, out int) int { return i * in / out }
func binEnd(i, in, out int) int   { return ((i+1)*in + out - 1) / out }

func (a *AdaptiveAvgPool2D) OutputShape(in []int) ([]int, error) {
	c, h, w, err := chw(a.Tag(), in, 0)
	if err != nil {
		return nil, err
	}
	if a.OutH <= 0 || a.OutW <= 0 || h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%s: cannot pool %v", a.Tag(), in)
	}
	return []int{c, a.OutH, a.OutW}, nil
}

func (a *AdaptiveAvgPool2D) Forward(x interface{}) (interface{}, error) {
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	shape, err := a.OutputShape(t.Shape)
	if err != nil {
		return nil, err
	}
	C, H, W := t.Shape[0], t.Shape[1], t.Shape[2]
	a.inShape = append([]int(nil), t.Shape...)
	out := tensor.New(shape...)
	for c := 0; c < C; c++ {
		for oy := 0; oy < a.OutH; oy++ {
			y0, y1 := binStart(oy, H, a.OutH), binEnd(oy, H, a.OutH)
			for ox := 0; ox < a.OutW; ox++ {
				x0, x1 := binStart(ox, W, a.OutW), binEnd(ox, W, a.OutW)
				sum := 0.0
				for iy := y0; iy < y1; iy++ {
					for ix := x0; ix < x1; ix++ {
						sum += t.Data[(c*H+iy)*W+ix]
					}
				}
				out.Data[(c*a.OutH+oy)*a.OutW+ox] = sum / float64((y1-y0)*(x1-x0))
			}
		}
	}
	return out, nil
}

func (a *AdaptiveAvgPool2D) Backward(g interface{}) (interface{}, error) {
	grad, err := asTensor(g)
	if err != nil {
		return nil, err
	}
	if a.inShape == nil {
		return nil, fmt.Errorf("%s: no cached input for backward pass", a.Tag())
	}
	C, H, W := a.inShape[0], a.inShape[1], a.inShape[2]
	if len(grad.Data) != C*a.OutH*a.OutW {
		return nil, fmt.Errorf("%s: gradient has %d values, want %d", a.Tag(), len(grad.Data), C*a.OutH*a.OutW)
	}
	gradIn := tensor.New(a.inShape...)
	for c := 0; c < C; c++ {
		for oy := 0; oy < a.OutH; oy++ {
			y0, y1 := binStart(oy, H, a.OutH), binEnd(oy, H, a.OutH)
			for ox := 0; ox < a.OutW; ox++ {
				x0, x1 := binStart(ox, W, a.OutW), binEnd(ox, W, a.OutW)
				share := grad.Data[(c*a.OutH+oy)*a.OutW+ox] / float64((y1-y0)*(x1-x0))
				for iy := y0; iy < y1; iy++ {
					for ix := x0; ix < x1; ix++ {
						gradIn.Data[(c*H+iy)*W+ix] += share
					}
				}
			}
		}
	}
	return gradIn, nil
}

func (a *AdaptiveAvgPool2D) Update(lr float64) error { return nil }
func (a *AdaptiveAvgPool2D) Encrypted() bool         { return false }
func (a *AdaptiveAvgPool2D) Levels() int             { return 0 }

func (a *AdaptiveAvgPool2D) Tag() string {
	return fmt.Sprintf("AdaptiveAvgPool2D_%dx%d", a.OutH, a.OutW)
}
