package bench

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/nn/zoo"
	"ariann_lib/tensor"
	"ariann_lib/utils"

	"github.com/stretchr/testify/require"
)

func TestTimeLayers(t *testing.T) {
	net := nn.NewGraph(
		nn.Child{Name: "conv", Module: layers.NewConv2D(1, 2, 3, 3)},
		nn.Child{Name: "pool", Module: layers.NewMaxPool2D(2, 2)},
		nn.Child{Name: "relu", Module: layers.NewReLU()},
		nn.Child{Name: "head", Module: nn.NewSequential(layers.NewFlatten(), layers.NewLinear(8, 3))},
	)
	x := tensor.New(1, 6, 6)
	for i := range x.Data {
		x.Data[i] = float64(i) / 36
	}
	rows, err := TimeLayers(net, x, 2)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	require.Equal(t, "head.1", rows[4].Path)
	require.Equal(t, "ReLU", rows[2].Tag)
	for _, r := range rows {
		require.False(t, r.Encrypted)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "tiny", rows, CKKSParamsSummary(nil)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	require.True(t, strings.HasPrefix(lines[1], "tiny,0,conv,Conv2D_1x2_k3x3_s1_p0,Plain,"))
}

func TestTimeLayersReportsForwardErrors(t *testing.T) {
	net := nn.NewSequential(layers.NewLinear(4, 2))
	_, err := TimeLayers(net, tensor.New(3), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "0 forward")
}

func TestWriteCSVFile(t *testing.T) {
	rows := []LayerTiming{{Path: "fc", Tag: "Linear_4x2"}, {Path: "relu", Tag: "ReLU", Encrypted: true}}
	path := filepath.Join(t.TempDir(), "timings.csv")
	require.NoError(t, WriteCSVFile(path, "tiny", rows, "none"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[2], "tiny,1,relu,ReLU,HE,"))

	err = WriteCSVFile(filepath.Join(t.TempDir(), "missing", "timings.csv"), "tiny", rows, "none")
	require.Error(t, err)
}

func TestTimeLayersOnZooModel(t *testing.T) {
	utils.Verbose = false
	m, err := zoo.GetModel("network2", "mnist", 10, zoo.WithSeed(5))
	require.NoError(t, err)
	rows, err := TimeLayers(m.Graph(), tensor.New(m.InputShape...), 1)
	require.NoError(t, err)
	require.Len(t, rows, len(m.StageNames()))
	require.Equal(t, "pool1", rows[1].Path)
}
