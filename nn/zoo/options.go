package zoo

import "ariann_lib/utils"

// Options collects the settings applied by GetModel.
type Options struct {
	// Weights are loaded into the assembled model; every entry must name
	// a layer of the final graph.
	Weights *utils.ModelWeights
	// Pretrained are stock-architecture weights, loaded before the head is
	// replaced by constructors that start from a stock network.
	Pretrained *utils.ModelWeights
	// Seed, when set, initializes every parameter not supplied by
	// Pretrained.
	Seed    int64
	HasSeed bool
}

// Option configures GetModel.
type Option func(*Options)

// WithWeights loads w into the model after assembly.
func WithWeights(w *utils.ModelWeights) Option {
	return func(o *Options) { o.Weights = w }
}

// WithPretrained starts stock-based models from w.
func WithPretrained(w *utils.ModelWeights) Option {
	return func(o *Options) { o.Pretrained = w }
}

// WithSeed initializes parameters deterministically from seed.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed, o.HasSeed = seed, true }
}

// pretrained is nil-safe so constructors can be called with nil options.
func (o *Options) pretrained() *utils.ModelWeights {
	if o == nil {
		return nil
	}
	return o.Pretrained
}

func buildOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
