package console

import (
	"io"

	"github.com/okian/santa/internal/domain/dedupe"
	"github.com/okian/santa/pkg/logger"
)

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithInput sets where answers are read from.
func WithInput(r io.Reader) Option {
	return func(c *Collector) {
		if r != nil {
			c.in = r
		}
	}
}

// WithOutput sets where prompts are written.
func WithOutput(w io.Writer) Option {
	return func(c *Collector) {
		if w != nil {
			c.out = w
		}
	}
}

// WithNameRegistry sets how each Collect call tracks names already entered.
func WithNameRegistry(newRegistry func() dedupe.Deduper) Option {
	return func(c *Collector) {
		if newRegistry != nil {
			c.names = newRegistry
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		c.logger = l
	}
}
