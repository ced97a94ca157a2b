package layers

import (
	"fmt"

	"ariann_lib/tensor"
)

var ErrType = &TypeError{"input must be *tensor.Tensor"}

type TypeError struct{ msg string }

func (e *TypeError) Error() string { return e.msg }

func asTensor(x interface{}) (*tensor.Tensor, error) {
	t, ok := x.(*tensor.Tensor)
	if !ok || t == nil {
		return nil, ErrType
	}
	return t, nil
}

// chw checks that shape is [C,H,W] with the expected channel count
// (channels <= 0 accepts any).
func chw(tag string, shape []int, channels int) (c, h, w int, err error) {
	if len(shape) != 3 {
		return 0, 0, 0, fmt.Errorf("%s expects [C,H,W] input, got %v", tag, shape)
	}
	c, h, w = shape[0], shape[1], shape[2]
	if channels > 0 && c != channels {
		return 0, 0, 0, fmt.Errorf("%s expects %d channels, got %d", tag, channels, c)
	}
	return c, h, w, nil
}

// windowOut returns the output length of a sliding window, torch-style
// (floor mode).
func windowOut(tag string, in, k, stride, pad int) (int, error) {
	if stride <= 0 {
		return 0, fmt.Errorf("%s: stride must be positive, got %d", tag, stride)
	}
	out := (in+2*pad-k)/stride + 1
	if in+2*pad < k || out <= 0 {
		return 0, fmt.Errorf("%s: window %d (stride %d, padding %d) does not fit input size %d", tag, k, stride, pad, in)
	}
	return out, nil
}
