package zoo

import (
	"ariann_lib/nn"
	"ariann_lib/nn/layers"
)

var mnistShape = []int{1, 28, 28}

// Network1 is a three-layer perceptron on 28×28 single-channel images. The
// dataset does not change the architecture.
func Network1(dataset string, outFeatures int, _ *Options) (*Model, error) {
	return newModel("network1", dataset, append([]int(nil), mnistShape...), outFeatures,
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "fc1", Module: layers.NewLinear(784, 128)},
		nn.Child{Name: "relu1", Module: layers.NewReLU()},
		nn.Child{Name: "fc2", Module: layers.NewLinear(128, 128)},
		nn.Child{Name: "relu2", Module: layers.NewReLU()},
		nn.Child{Name: "fc3", Module: layers.NewLinear(128, outFeatures)},
		nn.Child{Name: "relu3", Module: layers.NewReLU()},
	), nil
}

// Network2 is a two-convolution net on 28×28 single-channel images with
// each max pool placed before its ReLU.
func Network2(dataset string, outFeatures int, _ *Options) (*Model, error) {
	return newModel("network2", dataset, append([]int(nil), mnistShape...), outFeatures,
		nn.Child{Name: "conv1", Module: layers.NewConv2D(1, 16, 5, 5)},
		nn.Child{Name: "pool1", Module: layers.NewMaxPool2D(2, 2)},
		nn.Child{Name: "relu1", Module: layers.NewReLU()},
		nn.Child{Name: "conv2", Module: layers.NewConv2D(16, 16, 5, 5)},
		nn.Child{Name: "pool2", Module: layers.NewMaxPool2D(2, 2)},
		nn.Child{Name: "relu2", Module: layers.NewReLU()},
		nn.Child{Name: "flatten", Module: layers.NewFlatten()},
		nn.Child{Name: "fc1", Module: layers.NewLinear(256, 100)},
		nn.Child{Name: "relu3", Module: layers.NewReLU()},
		nn.Child{Name: "fc2", Module: layers.NewLinear(100, outFeatures)},
		nn.Child{Name: "relu4", Module: layers.NewReLU()},
	), nil
}
