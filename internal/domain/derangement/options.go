package derangement

import (
	"math/rand/v2"

	"github.com/okian/santa/pkg/logger"
)

// Option applies a configuration option to the Assigner.
type Option func(*Assigner)

// WithMaxAttempts caps the number of shuffles tried before giving up.
func WithMaxAttempts(n int) Option {
	return func(a *Assigner) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(a *Assigner) {
		if rng != nil {
			a.shuffle = rng.Shuffle
		}
	}
}

// WithShuffler replaces the shuffle step entirely. The function must permute
// n elements by calling swap, with the same contract as rand.Shuffle.
func WithShuffler(fn func(n int, swap func(i, j int))) Option {
	return func(a *Assigner) {
		if fn != nil {
			a.shuffle = fn
		}
	}
}

// WithLogger sets a custom logger for the assigner.
func WithLogger(l logger.Logger) Option {
	return func(a *Assigner) {
		if l != nil {
			a.logger = l
		}
	}
}
