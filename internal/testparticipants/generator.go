package testparticipants

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
)

const nameIDLength = 8

// decorations exercise CSV quoting: delimiters, quotes and non-ASCII text.
var decorations = []func(string) string{
	func(s string) string { return s + ", Jr." },
	func(s string) string { return `"` + s + `" Claus` },
	func(s string) string { return "Ёлка " + s },
	func(s string) string { return s + " O'Brien" },
}

// randomIndex returns a uniform index in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Generate creates count participants with unique uuid-derived names.
func Generate(ctx context.Context, cfg *Config) ([]model.Participant, error) {
	logger.Get().Info(ctx, "generating participants", logger.Int("count", cfg.Count))

	domain := cfg.Domain
	if domain == "" {
		domain = DefaultDomain
	}

	participants := make([]model.Participant, cfg.Count)
	for i := range participants {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}

		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:nameIDLength]
		name := "Elf " + id
		if cfg.Tricky && randomIndex(2) == 0 {
			name = decorations[randomIndex(len(decorations))](name)
		}
		participants[i] = model.Participant{
			Name:  name,
			Email: "elf-" + id + "@" + domain,
		}

		if cfg.Verbose {
			logger.Get().Debug(ctx, "participant generated",
				logger.String("name", participants[i].Name),
				logger.String("email", participants[i].Email))
		}
	}
	return participants, nil
}
