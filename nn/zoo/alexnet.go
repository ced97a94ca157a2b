package zoo

import (
	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/nn/stock"

	"github.com/pkg/errors"
)

// AlexNet builds an AlexNet variant for cifar10 or tiny-imagenet.
//
// cifar10 gets a compact AlexNet sized for 32×32 inputs. tiny-imagenet
// starts from the stock network (loading o.Pretrained if given), drops the
// average pool, swaps in a 256-wide classifier and inverts the features.
func AlexNet(dataset string, outFeatures int, o *Options) (*Model, error) {
	switch dataset {
	case "cifar10":
		return alexNetCIFAR10(outFeatures), nil
	case "tiny-imagenet":
		g := stock.AlexNet(1000)
		if pre := o.pretrained(); pre != nil {
			if err := loadWeights(g, pre); err != nil {
				return nil, errors.Wrap(err, "alexnet: pretrained weights")
			}
		}
		features, _ := g.Get("features")
		InvertActivationPool(features.(*nn.Sequential))
		if err := g.Set("avgpool", layers.NewIdentity()); err != nil {
			return nil, err
		}
		if err := g.Set("classifier", nn.NewSequential(
			layers.NewLinear(256, 1024),
			layers.NewReLU(),
			layers.NewLinear(1024, 1024),
			layers.NewReLU(),
			layers.NewLinear(1024, outFeatures),
		)); err != nil {
			return nil, err
		}
		return fromGraph("alexnet", dataset, inputShapeOr(dataset, nil), outFeatures, g), nil
	}
	return nil, errors.WithStack(ErrUnsupportedDataset)
}

func alexNetCIFAR10(outFeatures int) *Model {
	features := nn.NewSequential(
		layers.NewConv2D(3, 96, 11, 11).WithStride(4).WithPadding(10),
		layers.NewMaxPool2D(3, 2),
		layers.NewReLU(),
		layers.NewBatchNorm2D(96),
		layers.NewConv2D(96, 256, 5, 5).WithPadding(1),
		layers.NewMaxPool2D(3, 2),
		layers.NewReLU(),
		layers.NewBatchNorm2D(256),
		layers.NewConv2D(256, 384, 3, 3).WithPadding(1),
		layers.NewReLU(),
		layers.NewConv2D(384, 384, 3, 3).WithPadding(1),
		layers.NewReLU(),
		layers.NewConv2D(384, 256, 3, 3).WithPadding(1),
		layers.NewReLU(),
	)
	classifier := nn.NewSequential(
		layers.NewLinear(256, 256),
		layers.NewReLU(),
		layers.NewLinear(256, 256),
		layers.NewReLU(),
		layers.NewLinear(256, outFeatures),
		layers.NewReLU(),
	)
	return newModel("alexnet", "cifar10", inputShapeOr("cifar10", nil), outFeatures,
		nn.Child{Name: "features", Module: features},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "classifier", Module: classifier},
	)
}

// AlexNetFalcon builds the AlexNet used by the FALCON framework for 64×64
// inputs, with pooling already ahead of the activations. The dataset only
// names the model; the input is always 3×64×64.
func AlexNetFalcon(dataset string, outFeatures int, _ *Options) (*Model, error) {
	features := nn.NewSequential(
		layers.NewConv2D(3, 64, 7, 7).WithPadding(3),
		layers.NewConv2D(64, 64, 5, 5).WithPadding(2),
		layers.NewMaxPool2D(2, 2),
		layers.NewReLU(),
		layers.NewBatchNorm2D(64),
		layers.NewConv2D(64, 128, 5, 5).WithPadding(2),
		layers.NewMaxPool2D(2, 2),
		layers.NewReLU(),
		layers.NewBatchNorm2D(128),
		layers.NewConv2D(128, 256, 3, 3).WithPadding(1),
		layers.NewConv2D(256, 256, 3, 3).WithPadding(1),
		layers.NewMaxPool2D(2, 2),
		layers.NewReLU(),
	)
	classifier := nn.NewSequential(
		layers.NewLinear(256*8*8, 1024),
		layers.NewReLU(),
		layers.NewLinear(1024, 1024),
		layers.NewReLU(),
		layers.NewLinear(1024, outFeatures),
		layers.NewReLU(),
	)
	return newModel("alexnet-falcon", dataset, []int{3, 64, 64}, outFeatures,
		nn.Child{Name: "features", Module: features},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "classifier", Module: classifier},
	), nil
}
