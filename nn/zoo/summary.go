package zoo

import (
	"fmt"
	"io"
	"strings"

	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/tensor"

	"github.com/pkg/errors"
)

// LayerSummary describes one row of a model summary.
type LayerSummary struct {
	Path        string
	Tag         string
	OutShape    []int
	Params      int
	Activations int // values passed through a ReLU
}

// Summary is the per-layer breakdown of a model for its input shape.
type Summary struct {
	Model       string
	Dataset     string
	InputShape  []int
	Rows        []LayerSummary
	Params      int
	Activations int
}

// Summary walks the model with shape inference. Composite blocks other
// than Sequential and Graph (e.g. residual blocks) are reported as one row
// whose activations run at the block's output size.
func (m *Model) Summary() (*Summary, error) {
	s := &Summary{Model: m.Name, Dataset: m.Dataset, InputShape: append([]int(nil), m.InputShape...)}
	shape := m.InputShape
	for _, u := range nn.Units("", m.graph) {
		out, err := nn.InferShape(u.Module, shape)
		if err != nil {
			return nil, errors.Wrap(err, u.Name)
		}
		row := LayerSummary{Path: u.Name, Tag: u.Module.Tag(), OutShape: out, Params: nn.NumParams(u.Module)}
		if layers.IsReLU(u.Module) {
			row.Activations = tensor.Numel(shape)
		} else if _, ok := u.Module.(nn.Container); ok {
			_ = nn.Walk("", u.Module, func(_ string, leaf nn.Module) error {
				if layers.IsReLU(leaf) {
					row.Activations += tensor.Numel(out)
				}
				return nil
			})
		}
		s.Rows = append(s.Rows, row)
		s.Params += row.Params
		s.Activations += row.Activations
		shape = out
	}
	return s, nil
}

// Fprint writes the summary as a table.
func (s *Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s (%s) input %v\n", s.Model, s.Dataset, s.InputShape)
	fmt.Fprintf(w, "%-28s %-34s %-16s %12s %10s\n", "layer", "type", "output", "params", "relu")
	fmt.Fprintln(w, strings.Repeat("-", 104))
	for _, r := range s.Rows {
		fmt.Fprintf(w, "%-28s %-34s %-16s %12d %10d\n", r.Path, r.Tag, fmt.Sprint(r.OutShape), r.Params, r.Activations)
	}
	fmt.Fprintln(w, strings.Repeat("-", 104))
	fmt.Fprintf(w, "total params: %d, relu evaluations: %d\n", s.Params, s.Activations)
}
