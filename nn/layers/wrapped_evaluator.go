package layers

import (
	"fmt"

	"ariann_lib/utils"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// HEOps counts the homomorphic operations spent by encrypted layers.
type HEOps struct {
	Muls     int
	Relins   int
	Rescales int
	Adds     int
	Refresh  int // bootstraps before an evaluation
}

// Plus returns the element-wise sum of o and p.
func (o HEOps) Plus(p HEOps) HEOps {
	return HEOps{
		Muls:     o.Muls + p.Muls,
		Relins:   o.Relins + p.Relins,
		Rescales: o.Rescales + p.Rescales,
		Adds:     o.Adds + p.Adds,
		Refresh:  o.Refresh + p.Refresh,
	}
}

// Print writes the counts to utils.Output. Respects utils.Verbose.
func (o HEOps) Print(phase string) {
	if !utils.Verbose {
		return
	}
	fmt.Fprintf(utils.Output, "=== Phase: %s ===\n", phase)
	fmt.Fprintf(utils.Output, "Muls: %d, Relins: %d, Rescales: %d, Adds: %d, Bootstraps: %d\n",
		o.Muls, o.Relins, o.Rescales, o.Adds, o.Refresh)
}

// wrappedEvaluator forwards to a ckks.Evaluator and counts every call.
type wrappedEvaluator struct {
	eval *ckks.Evaluator
	ops  *HEOps
}

func (w wrappedEvaluator) MulRelinNew(a *rlwe.Ciphertext, b interface{}) (*rlwe.Ciphertext, error) {
	w.ops.Muls++
	w.ops.Relins++
	return w.eval.MulRelinNew(a, b)
}

func (w wrappedEvaluator) Mul(ct *rlwe.Ciphertext, c interface{}, out *rlwe.Ciphertext) error {
	w.ops.Muls++
	return w.eval.Mul(ct, c, out)
}

func (w wrappedEvaluator) Rescale(ct, out *rlwe.Ciphertext) error {
	w.ops.Rescales++
	return w.eval.Rescale(ct, out)
}

func (w wrappedEvaluator) Add(ct *rlwe.Ciphertext, pt *rlwe.Plaintext, out *rlwe.Ciphertext) error {
	w.ops.Adds++
	return w.eval.Add(ct, pt, out)
}

func (w wrappedEvaluator) AddNew(ct *rlwe.Ciphertext, op interface{}) (*rlwe.Ciphertext, error) {
	w.ops.Adds++
	return w.eval.AddNew(ct, op)
}
