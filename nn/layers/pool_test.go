package layers

import (
	"testing"

	"ariann_lib/tensor"

	"github.com/stretchr/testify/require"
)

func rampTensor(shape ...int) *tensor.Tensor {
	x := tensor.New(shape...)
	for i := range x.Data {
		x.Data[i] = float64(i)
	}
	return x
}

func TestMaxPool2D_Forward(t *testing.T) {
	p := NewMaxPool2D(2, 2)
	out, err := p.Forward(rampTensor(1, 4, 4))
	require.NoError(t, err)
	y := out.(*tensor.Tensor)
	require.Equal(t, []int{1, 2, 2}, y.Shape)
	require.Equal(t, []float64{5, 7, 13, 15}, y.Data)
}

func TestMaxPool2D_PaddingNeverWins(t *testing.T) {
	p := NewMaxPool2D(3, 2).WithPadding(1)
	x := tensor.New(1, 4, 4)
	for i := range x.Data {
		x.Data[i] = -1
	}
	out, err := p.Forward(x)
	require.NoError(t, err)
	y := out.(*tensor.Tensor)
	require.Equal(t, []int{1, 2, 2}, y.Shape)
	for _, v := range y.Data {
		require.Equal(t, -1.0, v)
	}
}

func TestMaxPool2D_BackwardRoutesToArgmax(t *testing.T) {
	p := NewMaxPool2D(2, 2)
	_, err := p.Forward(rampTensor(1, 4, 4))
	require.NoError(t, err)
	g, err := p.Backward(tensor.NewWithData([]float64{1, 2, 3, 4}))
	require.NoError(t, err)
	grad := g.(*tensor.Tensor)
	require.Equal(t, []int{1, 4, 4}, grad.Shape)
	require.Equal(t, 1.0, grad.At(0, 1, 1))
	require.Equal(t, 2.0, grad.At(0, 1, 3))
	require.Equal(t, 3.0, grad.At(0, 3, 1))
	require.Equal(t, 4.0, grad.At(0, 3, 3))
	require.Equal(t, 0.0, grad.At(0, 0, 0))
}

func TestMaxPool2D_OutputShape(t *testing.T) {
	shape, err := NewMaxPool2D(3, 2).OutputShape([]int{64, 15, 15})
	require.NoError(t, err)
	require.Equal(t, []int{64, 7, 7}, shape)

	_, err = NewMaxPool2D(3, 2).OutputShape([]int{64, 2, 2})
	require.Error(t, err)
	_, err = NewMaxPool2D(2, 2).WithPadding(2).OutputShape([]int{1, 8, 8})
	require.Error(t, err)
}

func TestAdaptiveAvgPool2D(t *testing.T) {
	out, err := NewAdaptiveAvgPool2D(2, 2).Forward(rampTensor(1, 4, 4))
	require.NoError(t, err)
	require.Equal(t, []float64{2.5, 4.5, 10.5, 12.5}, out.(*tensor.Tensor).Data)

	global := NewAdaptiveAvgPool2D(1, 1)
	out, err = global.Forward(rampTensor(2, 4, 4))
	require.NoError(t, err)
	require.Equal(t, []float64{7.5, 23.5}, out.(*tensor.Tensor).Data)

	g, err := global.Backward(tensor.NewWithData([]float64{16, 32}))
	require.NoError(t, err)
	grad := g.(*tensor.Tensor)
	require.Equal(t, 1.0, grad.At(0, 2, 2))
	require.Equal(t, 2.0, grad.At(1, 0, 3))
}

func TestAdaptiveAvgPool2D_UnevenBins(t *testing.T) {
	p := NewAdaptiveAvgPool2D(2, 2)
	shape, err := p.OutputShape([]int{3, 5, 5})
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 2}, shape)
	// bins overlap on row/col 2: [0,3) and [2,5)
	require.Equal(t, 0, binStart(0, 5, 2))
	require.Equal(t, 3, binEnd(0, 5, 2))
	require.Equal(t, 2, binStart(1, 5, 2))
	require.Equal(t, 5, binEnd(1, 5, 2))
}
