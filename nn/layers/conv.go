package layers

import (
	"fmt"

	"ariann_lib/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Conv2D is a 2D convolution over [C,H,W] inputs with square stride and
// zero padding. The forward pass lowers the input to columns (im2col) and
// runs a single GEMM.
type Conv2D struct {
	InChan, OutChan int
	KH, KW          int
	Stride, Padding int
	HasBias         bool

	W *tensor.Tensor // weights: [OutChan, InChan, KH, KW]
	B *tensor.Tensor // bias: [OutChan], nil when HasBias is false

	// Cached for backward
	lastCols     *mat.Dense
	inH, inW     int
	outH, outW   int
	gradW, gradB *tensor.Tensor
}

// NewConv2D describes a convolution with bias, stride 1 and no padding.
func NewConv2D(inChan, outChan, kh, kw int) *Conv2D {
	return &Conv2D{InChan: inChan, OutChan: outChan, KH: kh, KW: kw, Stride: 1, HasBias: true}
}

// WithStride sets the stride and returns c.
func (c *Conv2D) WithStride(s int) *Conv2D { c.Stride = s; return c }

// WithPadding sets the zero padding and returns c.
func (c *Conv2D) WithPadding(p int) *Conv2D { c.Padding = p; return c }

// WithoutBias drops the bias term and returns c.
func (c *Conv2D) WithoutBias() *Conv2D { c.HasBias = false; return c }

func (c *Conv2D) fanIn() int { return c.InChan * c.KH * c.KW }

func (c *Conv2D) Materialized() bool { return c.W != nil && (!c.HasBias || c.B != nil) }

func (c *Conv2D) ensureParams() { c.InitMissing(defaultSource()) }

func (c *Conv2D) InitParams(src rand.Source) {
	c.W, c.B = nil, nil
	c.InitMissing(src)
}

// InitMissing draws only the tensors that are still nil.
func (c *Conv2D) InitMissing(src rand.Source) {
	if c.W == nil {
		c.W = tensor.New(c.OutChan, c.InChan, c.KH, c.KW)
		uniformFill(c.W, c.fanIn(), src)
	}
	if c.HasBias && c.B == nil {
		c.B = tensor.New(c.OutChan)
		uniformFill(c.B, c.fanIn(), src)
	}
}

func (c *Conv2D) NumParams() int {
	n := c.OutChan * c.fanIn()
	if c.HasBias {
		n += c.OutChan
	}
	return n
}

func (c *Conv2D) State() map[string]*tensor.Tensor {
	c.ensureParams()
	st := map[string]*tensor.Tensor{"weight": c.W}
	if c.HasBias {
		st["bias"] = c.B
	}
	return st
}

func (c *Conv2D) LoadState(state map[string]*tensor.Tensor) error {
	if err := loadInto(c.Tag(), "weight", &c.W, state["weight"], c.OutChan, c.InChan, c.KH, c.KW); err != nil {
		return err
	}
	if !c.HasBias {
		if state["bias"] != nil {
			return fmt.Errorf("%s: layer has no bias", c.Tag())
		}
		return nil
	}
	return loadInto(c.Tag(), "bias", &c.B, state["bias"], c.OutChan)
}

func (c *Conv2D) OutputShape(in []int) ([]int, error) {
	_, h, w, err := chw(c.Tag(), in, c.InChan)
	if err != nil {
		return nil, err
	}
	oh, err := windowOut(c.Tag(), h, c.KH, c.Stride, c.Padding)
	if err != nil {
		return nil, err
	}
	ow, err := windowOut(c.Tag(), w, c.KW, c.Stride, c.Padding)
	if err != nil {
		return nil, err
	}
	return []int{c.OutChan, oh, ow}, nil
}

// im2col lays out every receptive field as a column:
// rows index (ic, dy, dx), columns index (oy, ox).
func (c *Conv2D) im2col(x *tensor.Tensor) *mat.Dense {
	rows, cols := c.fanIn(), c.outH*c.outW
	data := make([]float64, rows*cols)
	for ic := 0; ic < c.InChan; ic++ {
		for dy := 0; dy < c.KH; dy++ {
			for dx := 0; dx < c.KW; dx++ {
				r := (ic*c.KH+dy)*c.KW + dx
				for oy := 0; oy < c.outH; oy++ {
					iy := oy*c.Stride + dy - c.Padding
					if iy < 0 || iy >= c.inH {
						continue
					}
					for ox := 0; ox < c.outW; ox++ {
						ix := ox*c.Stride + dx - c.Padding
						if ix < 0 || ix >= c.inW {
							continue
						}
						data[r*cols+oy*c.outW+ox] = x.Data[(ic*c.inH+iy)*c.inW+ix]
					}
				}
			}
		}
	}
	return mat.NewDense(rows, cols, data)
}

func (c *Conv2D) Forward(x interface{}) (interface{}, error) {
	t, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	shape, err := c.OutputShape(t.Shape)
	if err != nil {
		return nil, err
	}
	c.ensureParams()
	c.inH, c.inW = t.Shape[1], t.Shape[2]
	c.outH, c.outW = shape[1], shape[2]

	c.lastCols = c.im2col(t)
	out := tensor.New(shape...)
	dst := mat.NewDense(c.OutChan, c.outH*c.outW, out.Data)
	wm := mat.NewDense(c.OutChan, c.fanIn(), c.W.Data)
	dst.Mul(wm, c.lastCols)
	if c.HasBias {
		plane := c.outH * c.outW
		for oc := 0; oc < c.OutChan; oc++ {
			for i := 0; i < plane; i++ {
				out.Data[oc*plane+i] += c.B.Data[oc]
			}
		}
	}
	return out, nil
}

func (c *Conv2D) Backward(gradOut interface{}) (interface{}, error) {
	g, err := asTensor(gradOut)
	if err != nil {
		return nil, err
	}
	if c.lastCols == nil {
		return nil, fmt.Errorf("%s: no cached input for backward pass", c.Tag())
	}
	plane := c.outH * c.outW
	if len(g.Data) != c.OutChan*plane {
		return nil, fmt.Errorf("%s: gradient has %d values, want %d", c.Tag(), len(g.Data), c.OutChan*plane)
	}
	gm := mat.NewDense(c.OutChan, plane, g.Data)

	c.gradW = tensor.New(c.OutChan, c.InChan, c.KH, c.KW)
	mat.NewDense(c.OutChan, c.fanIn(), c.gradW.Data).Mul(gm, c.lastCols.T())
	if c.HasBias {
		c.gradB = tensor.New(c.OutChan)
		for oc := 0; oc < c.OutChan; oc++ {
			for i := 0; i < plane; i++ {
				c.gradB.Data[oc] += g.Data[oc*plane+i]
			}
		}
	}

	var gradCols mat.Dense
	gradCols.Mul(mat.NewDense(c.OutChan, c.fanIn(), c.W.Data).T(), gm)

	// col2im: scatter-add columns back to input positions
	gradIn := tensor.New(c.InChan, c.inH, c.inW)
	for ic := 0; ic < c.InChan; ic++ {
		for dy := 0; dy < c.KH; dy++ {
			for dx := 0; dx < c.KW; dx++ {
				r := (ic*c.KH+dy)*c.KW + dx
				for oy := 0; oy < c.outH; oy++ {
					iy := oy*c.Stride + dy - c.Padding
					if iy < 0 || iy >= c.inH {
						continue
					}
					for ox := 0; ox < c.outW; ox++ {
						ix := ox*c.Stride + dx - c.Padding
						if ix < 0 || ix >= c.inW {
							continue
						}
						gradIn.Data[(ic*c.inH+iy)*c.inW+ix] += gradCols.At(r, oy*c.outW+ox)
					}
				}
			}
		}
	}
	return gradIn, nil
}

func (c *Conv2D) Update(lr float64) error {
	if c.gradW == nil {
		return nil
	}
	for i := range c.W.Data {
		c.W.Data[i] -= lr * c.gradW.Data[i]
	}
	if c.HasBias {
		for i := range c.B.Data {
			c.B.Data[i] -= lr * c.gradB.Data[i]
		}
	}
	return nil
}

func (c *Conv2D) Encrypted() bool { return false }
func (c *Conv2D) Levels() int     { return 0 }

func (c *Conv2D) Tag() string {
	return fmt.Sprintf("Conv2D_%dx%d_k%dx%d_s%d_p%d", c.InChan, c.OutChan, c.KH, c.KW, c.Stride, c.Padding)
}
