package zoo

import (
	"sort"
	"sync"

	"ariann_lib/utils"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Constructor assembles a model for a dataset and class count. A nil o is
// treated as the zero Options.
type Constructor func(dataset string, outFeatures int, o *Options) (*Model, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register adds a constructor under name.
func Register(name string, c Constructor) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		return errors.Errorf("zoo: model %q already registered", name)
	}
	registry[name] = c
	return nil
}

func mustRegister(name string, c Constructor) {
	if err := Register(name, c); err != nil {
		panic(err)
	}
}

// Names lists the registered model names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	mustRegister("network1", Network1)
	mustRegister("network2", Network2)
	mustRegister("resnet18", ResNet18)
	mustRegister("vgg16", VGG16)
	mustRegister("alexnet", AlexNet)
	mustRegister("alexnet-falcon", AlexNetFalcon)
}

// GetModel builds the model registered under modelName for dataset with
// outFeatures outputs.
func GetModel(modelName, dataset string, outFeatures int, opts ...Option) (*Model, error) {
	registryMu.RLock()
	build, ok := registry[modelName]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownModel, "%q", modelName)
	}
	if outFeatures <= 0 {
		return nil, errors.Wrapf(ErrInvalidOutFeatures, "got %d", outFeatures)
	}

	o := buildOptions(opts)
	m, err := build(dataset, outFeatures, o)
	if err != nil {
		return nil, err
	}
	if o.HasSeed {
		m.initMissing(rand.NewSource(uint64(o.Seed)))
	}
	if o.Weights != nil {
		if err := m.LoadWeights(o.Weights); err != nil {
			return nil, err
		}
	}
	utils.Logf("Built %s for %s: %d parameters", m.Name, m.Dataset, m.NumParams())
	return m, nil
}
