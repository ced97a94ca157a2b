// Package stock provides the conventional AlexNet, VGG16 and ResNet18
// definitions, laid out with torchvision's stage and layer names so that
// exported torch weights load by path.
package stock

import (
	"fmt"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
)

// AlexNet returns torchvision's AlexNet: features, avgpool (6×6), flatten
// and a dropout classifier ending in numClasses outputs.
func AlexNet(numClasses int) *nn.Graph {
	features := nn.NewSequential(
		layers.NewConv2D(3, 64, 11, 11).WithStride(4).WithPadding(2),
		layers.NewReLU(),
		layers.NewMaxPool2D(3, 2),
		layers.NewConv2D(64, 192, 5, 5).WithPadding(2),
		layers.NewReLU(),
		layers.NewMaxPool2D(3, 2),
		layers.NewConv2D(192, 384, 3, 3).WithPadding(1),
		layers.NewReLU(),
		layers.NewConv2D(384, 256, 3, 3).WithPadding(1),
		layers.NewReLU(),
		layers.NewConv2D(256, 256, 3, 3).WithPadding(1),
		layers.NewReLU(),
		layers.NewMaxPool2D(3, 2),
	)
	classifier := nn.NewSequential(
		layers.NewDropout(0.5),
		layers.NewLinear(256*6*6, 4096),
		layers.NewReLU(),
		layers.NewDropout(0.5),
		layers.NewLinear(4096, 4096),
		layers.NewReLU(),
		layers.NewLinear(4096, numClasses),
	)
	return nn.NewGraph(
		nn.Child{Name: "features", Module: features},
		nn.Child{Name: "avgpool", Module: layers.NewAdaptiveAvgPool2D(6, 6)},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "classifier", Module: classifier},
	)
}

// vgg16Config is configuration "D": output widths, 0 marks a max pool.
var vgg16Config = []int{64, 64, 0, 128, 128, 0, 256, 256, 256, 0, 512, 512, 512, 0, 512, 512, 512, 0}

// VGG16Features returns the VGG16 convolutional stack without batch norm.
func VGG16Features() *nn.Sequential {
	seq := nn.NewSequential()
	in := 3
	for _, v := range vgg16Config {
		if v == 0 {
			seq.Append(layers.NewMaxPool2D(2, 2))
			continue
		}
		seq.Append(layers.NewConv2D(in, v, 3, 3).WithPadding(1), layers.NewReLU())
		in = v
	}
	return seq
}

// VGG16 returns torchvision's vgg16: features, avgpool (7×7), flatten and
// a dropout classifier ending in numClasses outputs.
func VGG16(numClasses int) *nn.Graph {
	classifier := nn.NewSequential(
		layers.NewLinear(512*7*7, 4096),
		layers.NewReLU(),
		layers.NewDropout(0.5),
		layers.NewLinear(4096, 4096),
		layers.NewReLU(),
		layers.NewDropout(0.5),
		layers.NewLinear(4096, numClasses),
	)
	return nn.NewGraph(
		nn.Child{Name: "features", Module: VGG16Features()},
		nn.Child{Name: "avgpool", Module: layers.NewAdaptiveAvgPool2D(7, 7)},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "classifier", Module: classifier},
	)
}

// resnetLayer stacks blocks basic blocks, the first one carrying the stride.
func resnetLayer(in, out, blocks, stride int) *nn.Sequential {
	seq := nn.NewSequential(layers.NewBasicBlock(in, out, stride))
	for i := 1; i < blocks; i++ {
		seq.Append(layers.NewBasicBlock(out, out, 1))
	}
	return seq
}

// ResNet18 returns torchvision's resnet18 with a numClasses-way fc.
func ResNet18(numClasses int) *nn.Graph {
	stages := []nn.Child{
		{Name: "conv1", Module: layers.NewConv2D(3, 64, 7, 7).WithStride(2).WithPadding(3).WithoutBias()},
		{Name: "bn1", Module: layers.NewBatchNorm2D(64)},
		{Name: "relu", Module: layers.NewReLU()},
		{Name: "maxpool", Module: layers.NewMaxPool2D(3, 2).WithPadding(1)},
	}
	in := 64
	for i, width := range []int{64, 128, 256, 512} {
		stride := 2
		if i == 0 {
			stride = 1
		}
		stages = append(stages, nn.Child{Name: fmt.Sprintf("layer%d", i+1), Module: resnetLayer(in, width, 2, stride)})
		in = width
	}
	stages = append(stages,
		nn.Child{Name: "avgpool", Module: layers.NewAdaptiveAvgPool2D(1, 1)},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "fc", Module: layers.NewLinear(512, numClasses)},
	)
	return nn.NewGraph(stages...)
}
