package nn

import (
	"math"

	"ariann_lib/tensor"

	"gonum.org/v1/gonum/floats"
)

// Softmax returns exp(x_i) / sum_j exp(x_j), computed through log-sum-exp.
func Softmax(logits *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(len(logits.Data))
	if len(logits.Data) == 0 {
		return out
	}
	lse := floats.LogSumExp(logits.Data)
	for i, v := range logits.Data {
		out.Data[i] = math.Exp(v - lse)
	}
	return out
}

// TopK returns the indices of the k largest values, largest first.
func TopK(vals []float64, k int) []int {
	if k > len(vals) {
		k = len(vals)
	}
	idx := make([]int, len(vals))
	sorted := append([]float64(nil), vals...)
	floats.Argsort(sorted, idx)
	out := make([]int, k)
	for i := range out {
		out[i] = idx[len(idx)-1-i]
	}
	return out
}
