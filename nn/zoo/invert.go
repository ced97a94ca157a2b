package zoo

import (
	"ariann_lib/nn"
	"ariann_lib/nn/layers"
)

// InvertActivationPool moves every ReLU that is directly followed by a
// MaxPool behind it, so pooling runs first and fewer values reach the
// activation. The pairs are taken from the layer order before any swap and
// the scan makes a single pass: ReLU, ReLU, MaxPool becomes
// ReLU, MaxPool, ReLU. It returns the number of swaps.
func InvertActivationPool(seq *nn.Sequential) int {
	orig := append([]nn.Module(nil), seq.Layers...)
	swaps := 0
	for i := 0; i+1 < len(orig); i++ {
		next := seq.At(i + 1)
		if layers.IsReLU(orig[i]) && layers.IsMaxPool(next) {
			seq.Set(i+1, orig[i])
			seq.Set(i, next)
			swaps++
		}
	}
	return swaps
}

// HasActivationBeforePool reports whether seq still has a ReLU directly
// followed by a MaxPool.
func HasActivationBeforePool(seq *nn.Sequential) bool {
	for i := 0; i+1 < seq.Len(); i++ {
		if layers.IsReLU(seq.At(i)) && layers.IsMaxPool(seq.At(i+1)) {
			return true
		}
	}
	return false
}
