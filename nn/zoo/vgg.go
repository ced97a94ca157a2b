package zoo

import (
	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/nn/stock"

	"github.com/pkg/errors"
)

// vggFlatFeatures is the flattened feature size after the five pools.
var vggFlatFeatures = map[string]int{
	"cifar10":       512,
	"tiny-imagenet": 512 * 2 * 2,
}

// VGG16 builds VGG16 with inverted features, no average pool and a
// classifier sized for the dataset's flattened features.
func VGG16(dataset string, outFeatures int, _ *Options) (*Model, error) {
	flat, ok := vggFlatFeatures[dataset]
	if !ok {
		return nil, errors.WithStack(ErrUnsupportedDataset)
	}
	g := stock.VGG16(1000)
	features, _ := g.Get("features")
	InvertActivationPool(features.(*nn.Sequential))
	if err := g.Set("avgpool", layers.NewIdentity()); err != nil {
		return nil, err
	}
	if err := g.Set("classifier", nn.NewSequential(
		layers.NewLinear(flat, 4096),
		layers.NewReLU(),
		layers.NewLinear(4096, 4096),
		layers.NewReLU(),
		layers.NewLinear(4096, outFeatures),
	)); err != nil {
		return nil, err
	}
	return fromGraph("vgg16", dataset, inputShapeOr(dataset, nil), outFeatures, g), nil
}
