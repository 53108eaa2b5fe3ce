package testparticipants

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/santa/internal/adapters/repository"
	"github.com/okian/santa/internal/domain/derangement"
	"github.com/okian/santa/pkg/logger"
)

// Fixture defaults.
const (
	DefaultCount  = 12
	DefaultDomain = "example.com"
)

// Run generates a roster, saves it through the CSV store and verifies that
// it reloads intact and can be assigned.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	if cfg.Count < 2 {
		return nil, fmt.Errorf("count must be at least 2, got %d", cfg.Count)
	}

	logger.Get().Info(ctx, "starting fixture run",
		logger.Int("count", cfg.Count),
		logger.String("storeDir", cfg.StoreDir),
		logger.String("suffix", cfg.Suffix),
		logger.Bool("tricky", cfg.Tricky))

	// Step 1: generate
	participants, err := Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(participants)

	// Step 2: save
	store := repository.NewCSVStore(repository.WithDir(cfg.StoreDir))
	artifact, err := store.Save(ctx, participants, cfg.Suffix)
	if err != nil {
		return nil, fmt.Errorf("save failed: %w", err)
	}
	stats.Artifact = artifact

	// Step 3: reload and verify
	loaded, err := store.Load(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("reload failed: %w", err)
	}
	stats.Loaded = len(loaded)

	assigner, err := derangement.New()
	if err != nil {
		return nil, err
	}
	assignments, err := assigner.Assign(ctx, loaded)
	if err != nil {
		return nil, fmt.Errorf("assignment failed: %w", err)
	}
	stats.Assignments = len(assignments)

	if err := verify(participants, loaded, assignments); err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	logger.Get().Info(ctx, "fixture ready",
		logger.String("artifact", stats.Artifact),
		logger.Int("participants", stats.Loaded),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}
