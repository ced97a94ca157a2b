package stock

import (
	"testing"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/tensor"

	"github.com/stretchr/testify/require"
)

func TestAlexNetImageNetShape(t *testing.T) {
	g := AlexNet(1000)
	require.Equal(t, []string{"features", "avgpool", "flatten", "classifier"}, g.Names())
	out, err := g.OutputShape([]int{3, 224, 224})
	require.NoError(t, err)
	require.Equal(t, []int{1000}, out)

	features, _ := g.Get("features")
	seq := features.(*nn.Sequential)
	require.Equal(t, 13, seq.Len())
	require.True(t, layers.IsReLU(seq.At(1)))
	require.True(t, layers.IsMaxPool(seq.At(2)))
}

func TestVGG16Layout(t *testing.T) {
	seq := VGG16Features()
	require.Equal(t, 31, seq.Len())
	pools := 0
	for i := 0; i < seq.Len(); i++ {
		if layers.IsMaxPool(seq.At(i)) {
			pools++
			require.True(t, layers.IsReLU(seq.At(i-1)), "pool %d not preceded by ReLU", i)
		}
	}
	require.Equal(t, 5, pools)

	out, err := VGG16(10).OutputShape([]int{3, 224, 224})
	require.NoError(t, err)
	require.Equal(t, []int{10}, out)

	// VGG16 with torchvision defaults has 138M parameters
	require.Equal(t, 138357544, nn.NumParams(VGG16(1000)))
}

func TestResNet18Layout(t *testing.T) {
	g := ResNet18(1000)
	require.Equal(t, []string{
		"conv1", "bn1", "relu", "maxpool",
		"layer1", "layer2", "layer3", "layer4",
		"avgpool", "flatten", "fc",
	}, g.Names())

	for _, size := range []int{32, 64, 224} {
		out, err := g.OutputShape([]int{3, size, size})
		require.NoError(t, err, "input %d", size)
		require.Equal(t, []int{1000}, out)
	}

	// BatchNorm running statistics are buffers, not parameters.
	require.Equal(t, 11689512, nn.NumParams(g))

	var paths []string
	require.NoError(t, nn.Walk("", g, func(path string, _ nn.Module) error {
		paths = append(paths, path)
		return nil
	}))
	require.Contains(t, paths, "layer2.0.downsample.0")
	require.Contains(t, paths, "layer4.1.conv2")
	require.NotContains(t, paths, "layer1.0.downsample.0")
}

func TestResNet18ForwardSmallInput(t *testing.T) {
	g := ResNet18(3)
	x := tensor.New(3, 32, 32)
	for i := range x.Data {
		x.Data[i] = float64(i%7) / 7
	}
	out, err := g.Forward(x)
	require.NoError(t, err)
	require.Equal(t, []int{3}, out.(*tensor.Tensor).Shape)
}

func TestAlexNetParams(t *testing.T) {
	require.Equal(t, 61100840, nn.NumParams(AlexNet(1000)))
}
