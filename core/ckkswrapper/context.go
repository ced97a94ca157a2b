// Package ckkswrapper bundles the CKKS objects needed to evaluate a model's
// non-linear layers under encryption.
package ckkswrapper

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// HeContext holds the client-side key material together with a default
// evaluator. Only tests and local experiments hold the secret key; the
// server side receives a ServerKit.
type HeContext struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor
	Evaluator *ckks.Evaluator

	kgen *rlwe.KeyGenerator
	sk   *rlwe.SecretKey
	pk   *rlwe.PublicKey
	rlk  *rlwe.RelinearizationKey
}

// ServerKit is what the evaluating party needs: parameters, an encoder and
// an evaluator loaded with relinearization and the requested rotation keys.
type ServerKit struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder
	Evaluator *ckks.Evaluator
}

// DefaultLogN is the ring degree used by NewHeContext.
const DefaultLogN = 13

// NewHeContext creates a context with LogN=13 and six moduli, enough depth
// for a degree-3 activation followed by a rescale.
func NewHeContext() *HeContext {
	return NewHeContextWithLogN(DefaultLogN)
}

// NewHeContextWithLogN creates a context for the given ring degree. It
// panics on invalid parameters, as these are programmer errors.
func NewHeContextWithLogN(logN int) *HeContext {
	h, err := NewHeContextFromLogN(logN)
	if err != nil {
		panic(err)
	}
	return h
}

// NewHeContextFromLogN is NewHeContextWithLogN returning an error instead of
// panicking, for ring degrees that come from user input.
func NewHeContextFromLogN(logN int) (*HeContext, error) {
	if logN < 10 || logN > 16 {
		return nil, fmt.Errorf("ckkswrapper: logN %d out of range [10,16]", logN)
	}
	params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 40, 40, 40, 40, 40},
		LogP:            []int{61},
		LogDefaultScale: 40,
	})
	if err != nil {
		return nil, fmt.Errorf("ckkswrapper: invalid parameters: %w", err)
	}

	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	return &HeContext{
		Params:    params,
		Encoder:   ckks.NewEncoder(params),
		Encryptor: rlwe.NewEncryptor(params, pk),
		Decryptor: rlwe.NewDecryptor(params, sk),
		Evaluator: ckks.NewEvaluator(params, rlwe.NewMemEvaluationKeySet(rlk)),
		kgen:      kgen,
		sk:        sk,
		pk:        pk,
		rlk:       rlk,
	}, nil
}

// GenServerKit generates Galois keys for the given rotations and returns an
// evaluator-only kit.
func (h *HeContext) GenServerKit(rots []int) *ServerKit {
	galEls := h.Params.GaloisElements(rots)
	gks := h.kgen.GenGaloisKeysNew(galEls, h.sk)
	evk := rlwe.NewMemEvaluationKeySet(h.rlk, gks...)
	return &ServerKit{
		Params:    h.Params,
		Encoder:   ckks.NewEncoder(h.Params),
		Evaluator: ckks.NewEvaluator(h.Params, evk),
	}
}

// EncryptVector encodes values into the first slots of a fresh ciphertext.
func (h *HeContext) EncryptVector(values []float64) (*rlwe.Ciphertext, error) {
	if len(values) > h.Params.MaxSlots() {
		return nil, fmt.Errorf("ckkswrapper: %d values exceed %d slots", len(values), h.Params.MaxSlots())
	}
	pt := ckks.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode(values, pt); err != nil {
		return nil, err
	}
	return h.Encryptor.EncryptNew(pt)
}

// DecryptVector decrypts ct and returns the real part of the first n slots.
func (h *HeContext) DecryptVector(ct *rlwe.Ciphertext, n int) ([]float64, error) {
	if n > h.Params.MaxSlots() {
		n = h.Params.MaxSlots()
	}
	decoded := make([]complex128, h.Params.MaxSlots())
	if err := h.Encoder.Decode(h.Decryptor.DecryptNew(ct), decoded); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = real(decoded[i])
	}
	return out, nil
}
