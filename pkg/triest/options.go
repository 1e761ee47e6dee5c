package triest

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-triest/pkg/logging"
)

// seedStream is the PCG stream selector paired with a user seed.
const seedStream = 0x9e3779b97f4a7c15

type options struct {
	source   rand.Source
	logger   logging.Logger
	observer Observer
}

// Option configures an estimator at construction.
type Option func(*options)

// WithSeed makes coin flips and eviction choices reproducible. Two estimators
// built with the same seed and fed the same stream end in the same state.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.source = rand.NewPCG(seed, seed^seedStream) }
}

// WithSource injects the random source directly. The estimator takes
// ownership; do not share a source between estimators.
func WithSource(src rand.Source) Option {
	return func(o *options) { o.source = src }
}

// WithLogger sets the logger used for eviction tracing at debug level.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer notified after every HandleEdge call.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	return o
}
