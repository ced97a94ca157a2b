// Package bench times the forward and backward pass of every layer of a
// model on a real input, so the cost of encrypted activations can be
// compared against the plaintext layers around them.
package bench

import (
	"fmt"
	"io"
	"os"
	"time"

	"ariann_lib/core/ckkswrapper"
	"ariann_lib/nn"
	"ariann_lib/tensor"
	"ariann_lib/utils"
)

// LayerTiming is the mean cost of one layer over the timed runs.
type LayerTiming struct {
	Path      string
	Tag       string
	Encrypted bool
	Forward   time.Duration
	Backward  time.Duration
}

// TimeLayers runs x through the units of root (see nn.Units), timing each
// forward pass runs times, then times the backward passes in reverse order
// with an all-ones gradient.
func TimeLayers(root nn.Module, x *tensor.Tensor, runs int) ([]LayerTiming, error) {
	if runs < 1 {
		runs = 1
	}
	units := nn.Units("", root)
	out := make([]LayerTiming, len(units))

	var cur interface{} = x
	for i, u := range units {
		var next interface{}
		start := time.Now()
		for r := 0; r < runs; r++ {
			var err error
			if next, err = u.Module.Forward(cur); err != nil {
				return nil, fmt.Errorf("%s forward: %w", u.Name, err)
			}
		}
		out[i] = LayerTiming{
			Path:      u.Name,
			Tag:       u.Module.Tag(),
			Encrypted: u.Module.Encrypted(),
			Forward:   time.Since(start) / time.Duration(runs),
		}
		cur = next
	}

	y, ok := cur.(*tensor.Tensor)
	if !ok {
		return out, nil
	}
	var grad interface{} = ones(y.Shape)
	for i := len(units) - 1; i >= 0; i-- {
		var prev interface{}
		start := time.Now()
		for r := 0; r < runs; r++ {
			var err error
			if prev, err = units[i].Module.Backward(grad); err != nil {
				return nil, fmt.Errorf("%s backward: %w", units[i].Name, err)
			}
		}
		out[i].Backward = time.Since(start) / time.Duration(runs)
		grad = prev
	}
	return out, nil
}

func ones(shape []int) *tensor.Tensor {
	t := tensor.New(shape...)
	for i := range t.Data {
		t.Data[i] = 1
	}
	return t
}

// CKKSParamsSummary describes the parameters of heCtx for CSV output.
func CKKSParamsSummary(heCtx *ckkswrapper.HeContext) string {
	if heCtx == nil {
		return ""
	}
	params := heCtx.Params
	return fmt.Sprintf("logN=%d;logQ=%v;logP=%v", params.LogN(), params.LogQ(), params.LogP())
}

// WriteCSV writes one row per layer: model, index, path, type, mode,
// forward and backward time in microseconds, CKKS parameters.
func WriteCSV(w io.Writer, model string, rows []LayerTiming, ckks string) error {
	if _, err := fmt.Fprintln(w, "model,index,path,layer,mode,forward_us,backward_us,ckks"); err != nil {
		return err
	}
	for i, r := range rows {
		mode := "Plain"
		if r.Encrypted {
			mode = "HE"
		}
		if _, err := fmt.Fprintf(w, "%s,%d,%s,%s,%s,%.3f,%.3f,%s\n",
			model, i, r.Path, r.Tag, mode,
			utils.DurationUS(r.Forward), utils.DurationUS(r.Backward), ckks); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVFile writes the rows of WriteCSV to path, reporting a failed
// close as well as a failed write.
func WriteCSVFile(path, model string, rows []LayerTiming, ckks string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, model, rows, ckks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
