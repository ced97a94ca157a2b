package layers

import (
	"fmt"
	"strings"

	"ariann_lib/core/ckkswrapper"
	"ariann_lib/tensor"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// Poly holds the definition of a polynomial approximation.
type Poly struct {
	Name   string
	Coeffs []float64 // c0 + c1·x + c2·x² + ...
	Degree int
	Levels int // Levels consumed by the HE evaluation
}

// SupportedPolynomials contains precomputed polynomial approximations.
var SupportedPolynomials = map[string]Poly{
	"ReLU3": {
		Name:   "ReLU3",
		Coeffs: []float64{0.3183099, 0.5, 0.2122066, 0},
		Degree: 3,
		Levels: 3,
	},
	"ReLU3_deriv": {
		Name:   "ReLU3_deriv",
		Coeffs: []float64{0.5, 0.4244},
		Degree: 1,
		Levels: 1,
	},
}

// Activation applies a ReLU-like non-linearity. In plaintext mode it is an
// exact ReLU; once a CKKS context is attached it evaluates the polynomial
// approximation homomorphically.
type Activation struct {
	poly      Poly
	encrypted bool
	heCtx     *ckkswrapper.HeContext
	serverKit *ckkswrapper.ServerKit
	ops       HEOps

	lastInput *tensor.Tensor
}

// NewActivation creates a new activation layer.
func NewActivation(polyName string, encrypted bool, heCtx *ckkswrapper.HeContext) (*Activation, error) {
	poly, ok := SupportedPolynomials[polyName]
	if !ok {
		return nil, fmt.Errorf("unsupported polynomial: %s", polyName)
	}
	a := &Activation{poly: poly}
	if encrypted {
		if err := a.EnableEncrypted(heCtx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// NewReLU returns a plaintext ReLU.
func NewReLU() *Activation {
	return &Activation{poly: SupportedPolynomials["ReLU3"]}
}

// IsReLU reports whether m is a ReLU activation (exact or approximated).
func IsReLU(m interface{}) bool {
	a, ok := m.(*Activation)
	return ok && strings.HasPrefix(a.poly.Name, "ReLU")
}

// EnableEncrypted attaches a CKKS context; nil switches back to plaintext.
func (a *Activation) EnableEncrypted(heCtx *ckkswrapper.HeContext) error {
	if heCtx == nil {
		a.encrypted, a.heCtx, a.serverKit = false, nil, nil
		return nil
	}
	a.encrypted = true
	a.heCtx = heCtx
	a.serverKit = heCtx.GenServerKit([]int{})
	return nil
}

func (a *Activation) Levels() int {
	if a.encrypted {
		return a.poly.Levels
	}
	return 0
}

func (a *Activation) Encrypted() bool { return a.encrypted }

func (a *Activation) Poly() Poly { return a.poly }

// Ops returns the homomorphic operations spent since the last ResetOps.
func (a *Activation) Ops() HEOps { return a.ops }

func (a *Activation) ResetOps() { a.ops = HEOps{} }

func (a *Activation) OutputShape(in []int) ([]int, error) {
	return append([]int(nil), in...), nil
}

// Forward processes the input through the layer. Encrypted layers accept
// ciphertexts directly; a plaintext tensor given to an encrypted layer is
// encrypted, evaluated and decrypted slot-block by slot-block.
func (a *Activation) Forward(input interface{}) (interface{}, error) {
	switch x := input.(type) {
	case *rlwe.Ciphertext:
		return a.ForwardCipher(x)
	case []*rlwe.Ciphertext:
		out := make([]*rlwe.Ciphertext, len(x))
		for i, ct := range x {
			res, err := a.ForwardCipher(ct)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	case *tensor.Tensor:
		a.lastInput = x.Clone()
		if a.encrypted {
			return a.forwardRoundTrip(x)
		}
		return a.forwardPlain(x), nil
	}
	return nil, ErrType
}

// ForwardCipher evaluates the polynomial on an encrypted input.
func (a *Activation) ForwardCipher(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if !a.encrypted {
		return nil, fmt.Errorf("ForwardCipher expects encrypted activation layer")
	}
	if ct == nil {
		return nil, fmt.Errorf("input ciphertext is nil")
	}
	if ckkswrapper.NeedsBootstrap(ct, a.poly.Levels) {
		a.ops.Refresh++
	}
	ct, err := a.heCtx.Refresh(ct, a.poly.Levels)
	if err != nil {
		return nil, err
	}
	return a.evalPoly(ct, a.poly)
}

func (a *Activation) constPT(v float64, level int, scale rlwe.Scale) (*rlwe.Plaintext, error) {
	vec := make([]complex128, a.heCtx.Params.MaxSlots())
	for i := range vec {
		vec[i] = complex(v, 0)
	}
	pt := ckks.NewPlaintext(a.heCtx.Params, level)
	pt.Scale = scale
	if err := a.serverKit.Encoder.Encode(vec, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// evalPoly evaluates poly on ct with Horner's method; every step is one
// ciphertext product followed by a rescale.
func (a *Activation) evalPoly(ct *rlwe.Ciphertext, poly Poly) (*rlwe.Ciphertext, error) {
	eval := wrappedEvaluator{eval: a.serverKit.Evaluator, ops: &a.ops}

	res, err := eval.AddNew(ct, 0)
	if err != nil {
		return nil, err
	}
	if err := eval.Mul(res, 0, res); err != nil {
		return nil, err
	}
	pt, err := a.constPT(poly.Coeffs[poly.Degree], res.Level(), ct.Scale)
	if err != nil {
		return nil, err
	}
	if err := eval.Add(res, pt, res); err != nil {
		return nil, err
	}

	for i := poly.Degree - 1; i >= 0; i-- {
		tmp, err := eval.MulRelinNew(res, ct)
		if err != nil {
			return nil, err
		}
		if err = eval.Rescale(tmp, tmp); err != nil {
			return nil, err
		}
		if poly.Coeffs[i] == 0 {
			res = tmp
			continue
		}
		// the constant must sit at tmp's post-rescale scale
		pt, err := a.constPT(poly.Coeffs[i], tmp.Level(), tmp.Scale)
		if err != nil {
			return nil, err
		}
		if res, err = eval.AddNew(tmp, pt); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (a *Activation) forwardRoundTrip(x *tensor.Tensor) (*tensor.Tensor, error) {
	y := tensor.New(x.Shape...)
	slots := a.heCtx.Params.MaxSlots()
	for start := 0; start < len(x.Data); start += slots {
		end := start + slots
		if end > len(x.Data) {
			end = len(x.Data)
		}
		ct, err := a.heCtx.EncryptVector(x.Data[start:end])
		if err != nil {
			return nil, err
		}
		res, err := a.ForwardCipher(ct)
		if err != nil {
			return nil, err
		}
		vals, err := a.heCtx.DecryptVector(res, end-start)
		if err != nil {
			return nil, err
		}
		copy(y.Data[start:end], vals)
	}
	return y, nil
}

func (a *Activation) forwardPlain(x *tensor.Tensor) *tensor.Tensor {
	if strings.HasPrefix(a.poly.Name, "ReLU") {
		return tensor.ReluPlain(x)
	}
	y := tensor.New(x.Shape...)
	for i, v := range x.Data {
		y.Data[i] = EvalPoly(a.poly, v)
	}
	return y
}

// EvalPoly evaluates p at v in plaintext.
func EvalPoly(p Poly, v float64) float64 {
	res := p.Coeffs[p.Degree]
	for j := p.Degree - 1; j >= 0; j-- {
		res = res*v + p.Coeffs[j]
	}
	return res
}

// Backward uses the exact ReLU derivative in plaintext mode and the
// derivative polynomial in encrypted mode.
func (a *Activation) Backward(gradOut interface{}) (interface{}, error) {
	g, err := asTensor(gradOut)
	if err != nil {
		return nil, err
	}
	if a.lastInput == nil {
		return nil, fmt.Errorf("No cached input for backward pass")
	}
	if len(g.Data) != len(a.lastInput.Data) {
		return nil, fmt.Errorf("shape mismatch in Activation.Backward: input.Shape=%v, gradOut.Shape=%v", a.lastInput.Shape, g.Shape)
	}
	deriv, hasDeriv := SupportedPolynomials[a.poly.Name+"_deriv"]
	gradIn := tensor.New(a.lastInput.Shape...)
	for i, v := range a.lastInput.Data {
		d := 0.0
		switch {
		case a.encrypted && hasDeriv:
			d = EvalPoly(deriv, v)
		case v > 0:
			d = 1
		}
		gradIn.Data[i] = g.Data[i] * d
	}
	return gradIn, nil
}

func (a *Activation) Update(lr float64) error { return nil }

func (a *Activation) Tag() string {
	if !a.encrypted && strings.HasPrefix(a.poly.Name, "ReLU") {
		return "ReLU"
	}
	return "Activation_" + a.poly.Name
}
