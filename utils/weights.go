package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"ariann_lib/tensor"
)

// WeightsVersion is written into every file produced by SaveWeights.
const WeightsVersion = "1"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model, keyed by layer path
// (e.g. "features.0", "layer1.0.conv1").
type ModelWeights struct {
	Version string                 `json:"version"`
	Model   string                 `json:"model,omitempty"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains the parameters and buffers of a single layer.
type LayerWeight struct {
	Weight      *WeightData `json:"weight,omitempty"`
	Bias        *WeightData `json:"bias,omitempty"`
	RunningMean *WeightData `json:"running_mean,omitempty"`
	RunningVar  *WeightData `json:"running_var,omitempty"`
}

// NewModelWeights returns an empty weight set for the named model.
func NewModelWeights(model string) *ModelWeights {
	return &ModelWeights{
		Version: WeightsVersion,
		Model:   model,
		Layers:  make(map[string]LayerWeight),
	}
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	if weights.Layers == nil {
		weights.Layers = make(map[string]LayerWeight)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	if t == nil {
		return nil
	}
	return &WeightData{
		Name:  name,
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64(nil), t.Data...),
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) (*tensor.Tensor, error) {
	if wd == nil {
		return nil, nil
	}
	if n := tensor.Numel(wd.Shape); n != len(wd.Data) {
		return nil, fmt.Errorf("weight %q: shape %v needs %d values, got %d", wd.Name, wd.Shape, n, len(wd.Data))
	}
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t, nil
}
