package zoo

import (
	"testing"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/nn/stock"

	"github.com/stretchr/testify/require"
)

func TestInvertActivationPoolSinglePass(t *testing.T) {
	r1, r2, p := layers.NewReLU(), layers.NewReLU(), layers.NewMaxPool2D(2, 2)
	seq := nn.NewSequential(r1, r2, p)
	require.Equal(t, 1, InvertActivationPool(seq))
	require.Same(t, r1, seq.At(0))
	require.Same(t, p, seq.At(1))
	require.Same(t, r2, seq.At(2))
}

func TestInvertActivationPoolAlternating(t *testing.T) {
	r1, p1 := layers.NewReLU(), layers.NewMaxPool2D(2, 2)
	r2, p2 := layers.NewReLU(), layers.NewMaxPool2D(2, 2)
	seq := nn.NewSequential(r1, p1, r2, p2)
	require.Equal(t, 2, InvertActivationPool(seq))
	require.Equal(t, []nn.Module{p1, r1, p2, r2}, seq.Layers)
}

func TestInvertActivationPoolLeavesOtherPairs(t *testing.T) {
	conv := layers.NewConv2D(1, 1, 1, 1)
	p, r := layers.NewMaxPool2D(2, 2), layers.NewReLU()
	seq := nn.NewSequential(conv, p, r)
	require.Equal(t, 0, InvertActivationPool(seq))
	require.Equal(t, []nn.Module{conv, p, r}, seq.Layers)
	require.Equal(t, 0, InvertActivationPool(nn.NewSequential()))
}

func TestInvertStockFeatures(t *testing.T) {
	vgg := stock.VGG16Features()
	require.True(t, HasActivationBeforePool(vgg))
	require.Equal(t, 5, InvertActivationPool(vgg))
	require.False(t, HasActivationBeforePool(vgg))

	alex := stock.AlexNet(10)
	f, _ := alex.Get("features")
	require.Equal(t, 3, InvertActivationPool(f.(*nn.Sequential)))

	// shapes are unaffected by the swap
	out, err := alex.OutputShape([]int{3, 224, 224})
	require.NoError(t, err)
	require.Equal(t, []int{10}, out)
}
