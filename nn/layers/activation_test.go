package layers

import (
	"testing"

	"ariann_lib/core/ckkswrapper"
	"ariann_lib/tensor"

	"github.com/stretchr/testify/require"
)

func TestActivation_PlainReLU(t *testing.T) {
	a := NewReLU()
	require.Equal(t, "ReLU", a.Tag())
	require.True(t, IsReLU(a))
	require.False(t, IsMaxPool(a))
	require.True(t, IsMaxPool(NewMaxPool2D(2, 2)))
	require.False(t, IsReLU(NewMaxPool2D(2, 2)))

	out, err := a.Forward(tensor.NewWithData([]float64{-2, 0, 3}))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 3}, out.(*tensor.Tensor).Data)

	g, err := a.Backward(tensor.NewWithData([]float64{5, 5, 5}))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 5}, g.(*tensor.Tensor).Data)
	require.Equal(t, 0, a.Levels())
}

func TestActivation_Unsupported(t *testing.T) {
	_, err := NewActivation("Sigmoid9", false, nil)
	require.Error(t, err)
}

func TestEvalPoly(t *testing.T) {
	p := SupportedPolynomials["ReLU3"]
	require.InDelta(t, 0.3183099+0.5*0.5+0.2122066*0.25, EvalPoly(p, 0.5), 1e-12)
}

func TestActivation_HEMatchesPolynomial(t *testing.T) {
	heCtx := ckkswrapper.NewHeContext()
	a, err := NewActivation("ReLU3", true, heCtx)
	require.NoError(t, err)
	require.True(t, a.Encrypted())
	require.Equal(t, 3, a.Levels())
	require.Equal(t, "Activation_ReLU3", a.Tag())

	vals := []float64{-0.8, -0.4, 0, 0.3, 0.7, 1}
	ct, err := heCtx.EncryptVector(vals)
	require.NoError(t, err)
	res, err := a.ForwardCipher(ct)
	require.NoError(t, err)
	got, err := heCtx.DecryptVector(res, len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		require.InDelta(t, EvalPoly(a.Poly(), v), got[i], 1e-3, "slot %d", i)
	}
	require.Equal(t, HEOps{Muls: 4, Relins: 3, Rescales: 3, Adds: 5}, a.Ops())
	a.ResetOps()

	out, err := a.Forward(tensor.NewWithData(vals))
	require.NoError(t, err)
	for i, v := range vals {
		require.InDelta(t, EvalPoly(a.Poly(), v), out.(*tensor.Tensor).Data[i], 1e-3)
	}

	require.NoError(t, a.EnableEncrypted(nil))
	require.False(t, a.Encrypted())
	_, err = a.ForwardCipher(ct)
	require.Error(t, err)
}

func TestHEOpsPlus(t *testing.T) {
	a := HEOps{Muls: 1, Adds: 2}
	b := HEOps{Muls: 3, Rescales: 1, Refresh: 1}
	require.Equal(t, HEOps{Muls: 4, Adds: 2, Rescales: 1, Refresh: 1}, a.Plus(b))
}
