package zoo

import (
	"ariann_lib/nn/layers"
	"ariann_lib/nn/stock"
)

// ResNet18 builds ResNet18 with the stem's ReLU and max pool exchanged, so
// the stem runs conv1, bn1, maxpool, relu, and an outFeatures-way fc. The
// dataset only selects the input shape; unknown datasets get 3×224×224.
func ResNet18(dataset string, outFeatures int, _ *Options) (*Model, error) {
	g := stock.ResNet18(1000)
	relu, _ := g.Get("relu")
	pool, _ := g.Get("maxpool")
	if err := g.Set("relu", pool); err != nil {
		return nil, err
	}
	if err := g.Set("maxpool", relu); err != nil {
		return nil, err
	}
	if err := g.Set("fc", layers.NewLinear(512, outFeatures)); err != nil {
		return nil, err
	}
	return fromGraph("resnet18", dataset, inputShapeOr(dataset, imageNetShape), outFeatures, g), nil
}
