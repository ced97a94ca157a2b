package nn

import (
	"testing"

	"ariann_lib/tensor"

	"github.com/stretchr/testify/require"
)

func TestGraphRunsStagesInOrder(t *testing.T) {
	g := NewGraph(
		Child{Name: "a", Module: &addLayer{c: 1}},
		Child{Name: "b", Module: NewSequential(&addLayer{c: 2}, &addLayer{c: 3})},
	)
	require.Equal(t, []string{"a", "b"}, g.Names())
	out, err := g.Forward(tensor.New(2))
	require.NoError(t, err)
	require.Equal(t, []float64{6, 6}, out.(*tensor.Tensor).Data)
	require.Equal(t, 3, g.Levels())

	shape, err := g.OutputShape([]int{2})
	require.NoError(t, err)
	require.Equal(t, []int{2}, shape)
}

func TestGraphSetKeepsPosition(t *testing.T) {
	g := NewGraph(
		Child{Name: "relu", Module: &addLayer{c: 1}},
		Child{Name: "maxpool", Module: &addLayer{c: 2}},
	)
	repl := &errLayer{}
	require.NoError(t, g.Set("relu", repl))
	m, ok := g.Get("relu")
	require.True(t, ok)
	require.Same(t, repl, m)
	require.Equal(t, []string{"relu", "maxpool"}, g.Names())

	require.Error(t, g.Set("missing", repl))
	_, ok = g.Get("missing")
	require.False(t, ok)

	_, err := g.Forward(tensor.New(1))
	require.EqualError(t, err, "relu: fail")
}

func TestGraphDuplicateStagePanics(t *testing.T) {
	require.Panics(t, func() {
		NewGraph(Child{Name: "x", Module: &addLayer{}}, Child{Name: "x", Module: &addLayer{}})
	})
}

func TestUnitsExpandsLinearContainers(t *testing.T) {
	g := NewGraph(
		Child{Name: "features", Module: NewSequential(&addLayer{}, NewSequential(&addLayer{}))},
		Child{Name: "fc", Module: &addLayer{}},
	)
	var names []string
	for _, u := range Units("", g) {
		names = append(names, u.Name)
	}
	require.Equal(t, []string{"features.0", "features.1.0", "fc"}, names)
	require.Equal(t, "x", Units("x", &addLayer{})[0].Name)
}
