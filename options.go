package dm

import (
	"github.com/gogpu/dm/memory"
	"github.com/gogpu/dm/policy"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a Controller during creation.
//
// Example:
//
//	// System memory, default policy
//	ctrl, err := dm.NewController(backend)
//
//	// Fixed 256 MiB budget with a policy file
//	p, _ := policy.Load("dm.toml")
//	ctrl, err := dm.NewController(backend,
//	    dm.WithOracle(memory.NewFixed(256*memory.MiB)),
//	    dm.WithPolicy(p))
type Option func(*options)

// options holds optional configuration for Controller creation.
type options struct {
	oracle   memory.Oracle
	policy   policy.Policy
	lighting LightLevel
	meter    metric.MeterProvider
}

// defaultOptions returns the default controller options.
func defaultOptions() options {
	return options{
		oracle:   nil, // Will be set to memory.System() if nil
		policy:   policy.Default(),
		lighting: LightOneSided,
		meter:    nil, // Will be set to the global provider if nil
	}
}

// WithOracle sets the memory oracle sampled before every build decision.
func WithOracle(o memory.Oracle) Option {
	return func(opts *options) {
		opts.oracle = o
	}
}

// WithPolicy sets the initial memory policy.
// The policy can be changed later with Controller.SetPolicy.
func WithPolicy(p policy.Policy) Option {
	return func(opts *options) {
		opts.policy = p
	}
}

// WithLighting sets the initial light level used for shaded emission.
func WithLighting(l LightLevel) Option {
	return func(opts *options) {
		opts.lighting = l
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used for cache
// counters. By default the global provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(opts *options) {
		opts.meter = mp
	}
}
