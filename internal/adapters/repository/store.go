// Package repository persists participant rosters as CSV artifacts.
package repository

import (
	"context"

	"github.com/okian/santa/internal/domain/model"
)

// Header is the literal first row of every roster artifact.
var Header = []string{"Name", "Email"}

// Store saves and reloads participant rosters.
type Store interface {
	// Save writes participants to a new artifact named after today's date
	// plus suffix and returns the artifact path.
	Save(ctx context.Context, participants []model.Participant, suffix string) (string, error)

	// Load parses an artifact written by Save, preserving row order.
	Load(ctx context.Context, artifact string) ([]model.Participant, error)
}
