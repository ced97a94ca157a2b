package zoo

import (
	"ariann_lib/core/ckkswrapper"
	"ariann_lib/nn"
	"ariann_lib/nn/layers"
	"ariann_lib/tensor"
	"ariann_lib/utils"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Model is an assembled network: named stages run in order on inputs of
// InputShape. Layer paths follow torch's state_dict naming, e.g.
// "features.0" or "layer1.0.conv1".
type Model struct {
	Name        string
	Dataset     string
	InputShape  []int
	OutFeatures int

	graph *nn.Graph
}

func newModel(name, dataset string, in []int, out int, stages ...nn.Child) *Model {
	return &Model{
		Name:        name,
		Dataset:     dataset,
		InputShape:  in,
		OutFeatures: out,
		graph:       nn.NewGraph(stages...),
	}
}

func fromGraph(name, dataset string, in []int, out int, g *nn.Graph) *Model {
	return &Model{Name: name, Dataset: dataset, InputShape: in, OutFeatures: out, graph: g}
}

// Stage returns the module of a named stage, or nil.
func (m *Model) Stage(name string) nn.Module {
	s, _ := m.graph.Get(name)
	return s
}

// Graph returns the stages as a graph.
func (m *Model) Graph() *nn.Graph { return m.graph }

// StageNames lists the stages in execution order.
func (m *Model) StageNames() []string { return m.graph.Names() }

// Features returns the "features" stage of AlexNet/VGG-style models.
func (m *Model) Features() (*nn.Sequential, bool) {
	seq, ok := m.Stage("features").(*nn.Sequential)
	return seq, ok
}

// Layers returns the leaf modules in execution order.
func (m *Model) Layers() []nn.Module {
	var out []nn.Module
	_ = nn.Walk("", m, func(_ string, leaf nn.Module) error {
		out = append(out, leaf)
		return nil
	})
	return out
}

// OutputShape infers the output shape for an input of InputShape.
func (m *Model) OutputShape() ([]int, error) {
	return m.graph.OutputShape(m.InputShape)
}

// NumParams counts parameters without materializing them.
func (m *Model) NumParams() int { return nn.NumParams(m) }

// InitParams initializes every parameter from seed.
func (m *Model) InitParams(seed int64) {
	nn.InitParams(m, rand.NewSource(uint64(seed)))
}

func (m *Model) initMissing(src rand.Source) { nn.InitMissing(m, src) }

// EnableEncrypted switches every activation to CKKS evaluation under heCtx;
// a nil context switches them back to plaintext.
func (m *Model) EnableEncrypted(heCtx *ckkswrapper.HeContext) error {
	return nn.Walk("", m, func(path string, leaf nn.Module) error {
		a, ok := leaf.(*layers.Activation)
		if !ok {
			return nil
		}
		return errors.Wrap(a.EnableEncrypted(heCtx), path)
	})
}

// HEOps sums the homomorphic operations spent by the activations.
func (m *Model) HEOps() layers.HEOps {
	var total layers.HEOps
	for _, leaf := range m.Layers() {
		if a, ok := leaf.(*layers.Activation); ok {
			total = total.Plus(a.Ops())
		}
	}
	return total
}

// StateDict exports every parameter and buffer, materializing lazy ones.
func (m *Model) StateDict() *utils.ModelWeights {
	w := utils.NewModelWeights(m.Name)
	_ = nn.Walk("", m, func(path string, leaf nn.Module) error {
		p, ok := leaf.(nn.Parameterized)
		if !ok {
			return nil
		}
		st := p.State()
		w.Layers[path] = utils.LayerWeight{
			Weight:      utils.TensorToWeightData(path+".weight", st["weight"]),
			Bias:        utils.TensorToWeightData(path+".bias", st["bias"]),
			RunningMean: utils.TensorToWeightData(path+".running_mean", st["running_mean"]),
			RunningVar:  utils.TensorToWeightData(path+".running_var", st["running_var"]),
		}
		return nil
	})
	return w
}

// LoadWeights copies w into the model. Every entry must name a layer
// with parameters; layers absent from w keep their values.
func (m *Model) LoadWeights(w *utils.ModelWeights) error {
	return loadWeights(m, w)
}

func loadWeights(root nn.Module, w *utils.ModelWeights) error {
	leaves := map[string]nn.Parameterized{}
	_ = nn.Walk("", root, func(path string, leaf nn.Module) error {
		if p, ok := leaf.(nn.Parameterized); ok {
			leaves[path] = p
		}
		return nil
	})
	for path, lw := range w.Layers {
		p, ok := leaves[path]
		if !ok {
			return errors.Errorf("zoo: weights for %q match no layer with parameters", path)
		}
		state := map[string]*tensor.Tensor{}
		for name, wd := range map[string]*utils.WeightData{
			"weight":       lw.Weight,
			"bias":         lw.Bias,
			"running_mean": lw.RunningMean,
			"running_var":  lw.RunningVar,
		} {
			t, err := utils.WeightDataToTensor(wd)
			if err != nil {
				return errors.Wrap(err, path)
			}
			if t != nil {
				state[name] = t
			}
		}
		if err := p.LoadState(state); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func (m *Model) Children() []nn.Child { return m.graph.Children() }

func (m *Model) Forward(x interface{}) (interface{}, error) { return m.graph.Forward(x) }

func (m *Model) Backward(g interface{}) (interface{}, error) { return m.graph.Backward(g) }

func (m *Model) Update(lr float64) error { return m.graph.Update(lr) }

func (m *Model) Encrypted() bool { return m.graph.Encrypted() }

func (m *Model) Levels() int { return m.graph.Levels() }

func (m *Model) Tag() string { return m.Name + "/" + m.Dataset }
