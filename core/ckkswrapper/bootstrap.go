package ckkswrapper

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// CheatBootstrap refreshes a ciphertext's level by decrypting and re-encrypting.
// It needs the secret key, so it only stands in for real bootstrapping in
// experiments where the client and evaluator share a process.
func (h *HeContext) CheatBootstrap(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	values := make([]complex128, h.Params.MaxSlots())
	if err := h.Encoder.Decode(h.Decryptor.DecryptNew(ct), values); err != nil {
		return nil, err
	}
	pt := ckks.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode(values, pt); err != nil {
		return nil, err
	}
	return h.Encryptor.EncryptNew(pt)
}

// Refresh returns ct unchanged when it still has at least need levels left,
// and a cheat-bootstrapped copy otherwise.
func (h *HeContext) Refresh(ct *rlwe.Ciphertext, need int) (*rlwe.Ciphertext, error) {
	if !NeedsBootstrap(ct, need) {
		return ct, nil
	}
	return h.CheatBootstrap(ct)
}

// NeedsBootstrap reports whether fewer than need levels remain on ct.
func NeedsBootstrap(ct *rlwe.Ciphertext, need int) bool {
	if need <= 0 {
		need = 1
	}
	return ct.Level() < need
}
