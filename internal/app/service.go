// Package service runs a Secret Santa round end to end: collect participants,
// persist and reload the roster, draw assignments and notify every giver.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/okian/santa/internal/adapters/mq/worker"
	"github.com/okian/santa/internal/adapters/repository"
	"github.com/okian/santa/internal/domain/derangement"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 1
	defaultSendTimeout = 30 * time.Second
	minParticipants    = 2
)

// Collector gathers participants for a run.
type Collector interface {
	Collect(ctx context.Context) ([]model.Participant, error)
}

// Assigner draws a derangement over participants.
type Assigner interface {
	Assign(ctx context.Context, participants []model.Participant) ([]model.Assignment, error)
}

// Report describes a finished run.
type Report struct {
	RunID        string
	Artifact     string
	Participants []model.Participant
	Assignments  []model.Assignment
	Outcomes     []model.Outcome
}

// Failures returns the outcomes that did not deliver.
func (r *Report) Failures() []model.Outcome {
	var failed []model.Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Summary counts outcomes by status.
func (r *Report) Summary() map[model.OutcomeStatus]int {
	counts := make(map[model.OutcomeStatus]int, 3)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Service orchestrates a run.
type Service struct {
	store     repository.Store
	assigner  Assigner
	collector Collector
	sender    worker.Sender

	senderAddress string
	mode          model.Mode
	suffix        string
	workerCount   int
	sendTimeout   time.Duration
	out           io.Writer

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets where rosters are saved and reloaded.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithAssigner sets the derangement source.
func WithAssigner(a Assigner) Option {
	return func(s *Service) {
		s.assigner = a
	}
}

// WithCollector sets the participant source for Run.
func WithCollector(c Collector) Option {
	return func(s *Service) {
		s.collector = c
	}
}

// WithSender sets the mail sender used in LIVE mode.
func WithSender(sender worker.Sender) Option {
	return func(s *Service) {
		s.sender = sender
	}
}

// WithSenderAddress sets the From address of every invitation.
func WithSenderAddress(addr string) Option {
	return func(s *Service) {
		s.senderAddress = addr
	}
}

// WithMode selects LIVE or DRY_RUN delivery.
func WithMode(mode model.Mode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithSuffix sets the artifact name suffix.
func WithSuffix(suffix string) Option {
	return func(s *Service) {
		s.suffix = suffix
	}
}

// WithWorkerCount sets the number of concurrent LIVE sends.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSendTimeout bounds each LIVE send. Zero disables the bound.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sendTimeout = d
		}
	}
}

// WithOutput sets where DRY_RUN previews are written.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// New constructs a Service. Store and assigner default to a CSV store in the
// working directory and a crypto-seeded assigner.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		mode:        model.ModeLive,
		workerCount: defaultWorkerCount,
		sendTimeout: defaultSendTimeout,
		out:         os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewCSVStore()
	}
	if s.assigner == nil {
		a, err := derangement.New()
		if err != nil {
			return nil, fmt.Errorf("create assigner: %w", err)
		}
		s.assigner = a
	}

	return s, nil
}

// Run performs collect, save, load, assign and dispatch. A fatal failure is
// returned as *StageError alongside the partial report.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := s.logger

	if s.collector == nil {
		return report, &StageError{Stage: StageCollect, Err: ErrNoCollector}
	}

	log.Info(ctx, "collecting participants", logger.String("run_id", report.RunID))
	participants, err := s.collector.Collect(ctx)
	if err != nil {
		return report, &StageError{Stage: StageCollect, Err: err}
	}
	for range participants {
		metrics.RecordParticipantCollected()
	}
	report.Participants = participants

	if len(participants) < minParticipants {
		return report, &StageError{Stage: StageCollect, Err: fmt.Errorf(
			"%w: at least %d distinct participants required, got %d",
			derangement.ErrInvalidInput, minParticipants, len(participants))}
	}

	artifact, err := s.store.Save(ctx, participants, s.suffix)
	if err != nil {
		return report, &StageError{Stage: StageSave, Err: err}
	}
	report.Artifact = artifact

	return s.fromArtifact(ctx, report)
}

// RunFromArtifact reuses a roster saved by an earlier run: load, assign and dispatch.
func (s *Service) RunFromArtifact(ctx context.Context, artifact string) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Artifact: artifact}
	return s.fromArtifact(ctx, report)
}

func (s *Service) fromArtifact(ctx context.Context, report *Report) (*Report, error) {
	log := s.logger

	loaded, err := s.store.Load(ctx, report.Artifact)
	if err != nil {
		return report, &StageError{Stage: StageLoad, Err: err}
	}
	report.Participants = loaded

	assignments, err := s.assigner.Assign(ctx, loaded)
	if err != nil {
		return report, &StageError{Stage: StageAssign, Err: err}
	}
	report.Assignments = assignments

	log.Info(ctx, "dispatching invitations",
		logger.String("run_id", report.RunID),
		logger.String("artifact", report.Artifact),
		logger.Int("participants", len(loaded)),
		logger.String("mode", s.mode.String()),
	)

	dispatcher := NewDispatcher(DispatcherConfig{
		Sender:      s.sender,
		Workers:     s.workerCount,
		SendTimeout: s.sendTimeout,
		Output:      s.out,
		Logger:      log.Named("dispatcher"),
	})
	report.Outcomes = dispatcher.Dispatch(ctx, assignments, s.senderAddress, s.mode)

	summary := report.Summary()
	log.Info(ctx, "run finished",
		logger.String("run_id", report.RunID),
		logger.Int("sent", summary[model.StatusSent]),
		logger.Int("simulated", summary[model.StatusSimulated]),
		logger.Int("failed", summary[model.StatusFailed]),
	)
	return report, nil
}
