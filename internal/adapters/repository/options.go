package repository

import (
	"time"

	"github.com/okian/santa/pkg/logger"
)

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithDir sets the directory artifacts are written to.
func WithDir(dir string) Option {
	return func(s *CSVStore) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithClock sets the clock used to date new artifacts.
func WithClock(now func() time.Time) Option {
	return func(s *CSVStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *CSVStore) {
		if l != nil {
			s.logger = l
		}
	}
}
