// Package derangement pairs every participant with a gift recipient other
// than themselves.
//
// Assign uses rejection sampling: shuffle a copy of the roster uniformly and
// retry until no participant lands on their own position. For n >= 2 the
// acceptance probability tends to 1/e, so the expected number of shuffles
// stays below three; a hard ceiling guards against pathological input.
package derangement

import (
	crand "crypto/rand"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/okian/santa/internal/domain/dedupe"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

// Default assigner configuration constants.
const (
	DefaultMaxAttempts = 10_000
	minParticipants    = 2
)

// Assigner produces giver -> recipient assignments with no self-pairing.
type Assigner struct {
	maxAttempts int
	shuffle     func(n int, swap func(i, j int))
	logger      logger.Logger
}

// New creates an Assigner seeded from crypto/rand.
func New(opts ...Option) (*Assigner, error) {
	seed1, err := newSeed()
	if err != nil {
		return nil, err
	}
	seed2, err := newSeed()
	if err != nil {
		return nil, err
	}

	a := &Assigner{
		maxAttempts: DefaultMaxAttempts,
		shuffle:     rand.New(rand.NewPCG(seed1, seed2)).Shuffle, //nolint:gosec // gift pairing, not a secret
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logger.Get().Named("assigner")
	}

	return a, nil
}

// Assign returns one assignment per participant, in participant order, such
// that recipient names form a permutation of the giver names with no fixed
// point.
func (a *Assigner) Assign(ctx context.Context, participants []model.Participant) ([]model.Assignment, error) {
	if err := validate(ctx, participants); err != nil {
		metrics.RecordAssignmentError("invalid_input")
		return nil, err
	}

	candidates := make([]model.Participant, len(participants))
	copy(candidates, participants)

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assign: %w", err)
		}

		a.shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		if hasFixedPoint(participants, candidates) {
			continue
		}

		metrics.RecordAssignmentAttempts(attempt)
		a.logger.Debug(ctx, "derangement found",
			logger.Int("participants", len(participants)),
			logger.Int("attempts", attempt),
		)

		assignments := make([]model.Assignment, len(participants))
		for i, giver := range participants {
			assignments[i] = model.NewAssignment(giver, candidates[i])
		}
		return assignments, nil
	}

	metrics.RecordAssignmentError("retry_ceiling")
	a.logger.Error(ctx, "no derangement found within retry ceiling",
		logger.Int("participants", len(participants)),
		logger.Int("max_attempts", a.maxAttempts),
	)
	return nil, fmt.Errorf("%w: no valid pairing after %d attempts", ErrAssignment, a.maxAttempts)
}

// validate enforces the preconditions under which a derangement exists.
func validate(ctx context.Context, participants []model.Participant) error {
	if len(participants) < minParticipants {
		return fmt.Errorf("%w: at least 2 distinct participants required, got %d", ErrInvalidInput, len(participants))
	}

	names := make([]string, len(participants))
	for i, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: participant %d has an empty name", ErrInvalidInput, i+1)
		}
		names[i] = p.Name
	}

	if dup, found := dedupe.FirstDuplicate(ctx, names); found {
		return fmt.Errorf("%w: duplicate participant name %q", ErrInvalidInput, dup)
	}
	return nil
}

func hasFixedPoint(givers, recipients []model.Participant) bool {
	for i := range givers {
		if givers[i].Name == recipients[i].Name {
			return true
		}
	}
	return false
}

// newSeed reads a random 64-bit seed from crypto/rand.
func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
