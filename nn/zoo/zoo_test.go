package zoo

import (
	"os"
	"testing"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/utils"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.Verbose = false
	os.Exit(m.Run())
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"alexnet", "alexnet-falcon", "network1", "network2", "resnet18", "vgg16"}, Names())
	require.Error(t, Register("vgg16", VGG16))
	require.Equal(t, []string{"cifar10", "mnist", "tiny-imagenet"}, Datasets())
}

func TestOutputShapeMatchesOutFeatures(t *testing.T) {
	cases := []struct {
		model, dataset string
		out            int
	}{
		{"network1", "mnist", 10},
		{"network2", "mnist", 10},
		{"alexnet", "cifar10", 10},
		{"alexnet", "tiny-imagenet", 200},
		{"vgg16", "cifar10", 10},
		{"vgg16", "tiny-imagenet", 200},
		{"resnet18", "cifar10", 10},
		{"resnet18", "tiny-imagenet", 200},
		{"resnet18", "imagenet", 1000},
		{"alexnet-falcon", "tiny-imagenet", 200},
	}
	for _, tc := range cases {
		t.Run(tc.model+"/"+tc.dataset, func(t *testing.T) {
			m, err := GetModel(tc.model, tc.dataset, tc.out)
			require.NoError(t, err)
			shape, err := m.OutputShape()
			require.NoError(t, err)
			require.Equal(t, []int{tc.out}, shape)
		})
	}
}

func TestResNet18UnknownDatasetUsesImageNetInput(t *testing.T) {
	m, err := GetModel("resnet18", "imagenet", 1000)
	require.NoError(t, err)
	require.Equal(t, []int{3, 224, 224}, m.InputShape)
}

func TestFeaturesHaveNoActivationBeforePool(t *testing.T) {
	for _, tc := range [][2]string{
		{"alexnet", "cifar10"},
		{"alexnet", "tiny-imagenet"},
		{"vgg16", "cifar10"},
		{"vgg16", "tiny-imagenet"},
		{"alexnet-falcon", "tiny-imagenet"},
	} {
		m, err := GetModel(tc[0], tc[1], 10)
		require.NoError(t, err)
		features, ok := m.Features()
		require.True(t, ok)
		require.False(t, HasActivationBeforePool(features), "%s/%s", tc[0], tc[1])
	}
}

func TestHeadsReplaced(t *testing.T) {
	m, err := GetModel("vgg16", "tiny-imagenet", 200)
	require.NoError(t, err)
	require.IsType(t, &layers.Identity{}, m.Stage("avgpool"))
	cls := m.Stage("classifier").(*nn.Sequential)
	require.Equal(t, 5, cls.Len())
	require.Equal(t, 2048, cls.At(0).(*layers.Linear).In)
	require.Equal(t, 200, cls.At(4).(*layers.Linear).Out)

	m, err = GetModel("alexnet", "tiny-imagenet", 200)
	require.NoError(t, err)
	require.IsType(t, &layers.Identity{}, m.Stage("avgpool"))
	cls = m.Stage("classifier").(*nn.Sequential)
	require.Equal(t, 256, cls.At(0).(*layers.Linear).In)
	require.Equal(t, 1024, cls.At(2).(*layers.Linear).In)
	require.Equal(t, 200, cls.At(4).(*layers.Linear).Out)
}

func TestUnknownModel(t *testing.T) {
	_, err := GetModel("not-a-model", "cifar10", 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownModel))
	require.Equal(t, ErrUnknownModel, errors.Cause(err))
	require.Contains(t, err.Error(), "not-a-model")
}

func TestUnsupportedDataset(t *testing.T) {
	for _, name := range []string{"alexnet", "vgg16"} {
		_, err := GetModel(name, "unsupported-dataset", 10)
		require.True(t, errors.Is(err, ErrUnsupportedDataset), name)
		require.EqualError(t, err, "VGG16 can't be built for this dataset, maybe modify it?")
	}
}

func TestInvalidOutFeatures(t *testing.T) {
	_, err := GetModel("network1", "mnist", 0)
	require.True(t, errors.Is(err, ErrInvalidOutFeatures))
}

func TestResNet18StemSwapped(t *testing.T) {
	m, err := GetModel("resnet18", "cifar10", 10)
	require.NoError(t, err)
	require.Equal(t, []string{
		"conv1", "bn1", "relu", "maxpool",
		"layer1", "layer2", "layer3", "layer4",
		"avgpool", "flatten", "fc",
	}, m.StageNames())
	require.IsType(t, &layers.Conv2D{}, m.Stage("conv1"))
	require.IsType(t, &layers.BatchNorm2D{}, m.Stage("bn1"))
	require.True(t, layers.IsMaxPool(m.Stage("relu")))
	require.True(t, layers.IsReLU(m.Stage("maxpool")))
	require.Equal(t, 10, m.Stage("fc").(*layers.Linear).Out)

	leaves := m.Layers()
	require.True(t, layers.IsMaxPool(leaves[2]))
	require.True(t, layers.IsReLU(leaves[3]))
}
