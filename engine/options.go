package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// DefaultReliabilityThreshold is the row count under which results are
// flagged as less reliable.
const DefaultReliabilityThreshold = 15

// EmptyMessage is shown when the filters leave nothing to chart.
const EmptyMessage = "Nothing to see here... but some regimes would still call it transparent."

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger               *zap.Logger
	ReliabilityThreshold int
	EmptyMessage         string
}

// WithLogger routes engine logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithReliabilityThreshold overrides the low-reliability row count.
func WithReliabilityThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.ReliabilityThreshold = n
		}
	}
}

// WithEmptyMessage overrides the placeholder for empty results.
func WithEmptyMessage(msg string) Option {
	return func(c *config) {
		if msg != "" {
			c.EmptyMessage = msg
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:               zap.NewNop(),
		ReliabilityThreshold: DefaultReliabilityThreshold,
		EmptyMessage:         EmptyMessage,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
