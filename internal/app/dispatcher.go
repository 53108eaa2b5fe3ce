package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/santa/internal/adapters/mq/queue"
	"github.com/okian/santa/internal/adapters/mq/worker"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

// Invitation text.
const (
	InvitationSubject = "Secret Santa assignment"
	dryRunSeparator   = "-------------"
)

// InvitationBody renders the message a giver receives.
func InvitationBody(a model.Assignment) string {
	return fmt.Sprintf("Hi %s!\nThis is a Secret Santa assignment\nYou need to buy a gift for %s", a.GiverName, a.RecipientName)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Sender delivers LIVE invitations. Unused in DRY_RUN.
	Sender worker.Sender
	// Workers is the number of concurrent sends; 1 sends sequentially.
	Workers int
	// SendTimeout bounds each send. Zero disables it.
	SendTimeout time.Duration
	// Output receives DRY_RUN previews. Defaults to stdout.
	Output io.Writer
	Logger logger.Logger
}

// Dispatcher notifies every giver of their recipient.
type Dispatcher struct {
	sender      worker.Sender
	workers     int
	sendTimeout time.Duration
	out         io.Writer
	logger      logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		sender:      cfg.Sender,
		workers:     cfg.Workers,
		sendTimeout: cfg.SendTimeout,
		out:         cfg.Output,
		logger:      cfg.Logger,
	}
	if d.workers < 1 {
		d.workers = 1
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("dispatcher")
	}
	return d
}

// Dispatch returns exactly one outcome per assignment, in input order.
// Delivery failures are reported in the outcomes and never abort the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, assignments []model.Assignment, from string, mode model.Mode) []model.Outcome {
	if len(assignments) == 0 {
		return []model.Outcome{}
	}

	var outcomes []model.Outcome
	if mode == model.ModeDryRun {
		outcomes = d.preview(ctx, assignments, from)
	} else {
		outcomes = d.send(ctx, assignments, from)
	}

	for _, o := range outcomes {
		metrics.RecordInvitation(string(o.Status))
	}
	return outcomes
}

// preview prints each invitation instead of sending it.
func (d *Dispatcher) preview(ctx context.Context, assignments []model.Assignment, from string) []model.Outcome {
	outcomes := make([]model.Outcome, len(assignments))
	for i, a := range assignments {
		body := InvitationBody(a)
		if _, err := fmt.Fprintf(d.out, "Sending from %s to %s:\n%s\n%s\n", from, a.GiverEmail, body, dryRunSeparator); err != nil {
			d.logger.Warn(ctx, "failed to write preview", logger.Error(err))
		}
		d.logger.Debug(ctx, "invitation simulated",
			logger.String("giver", a.GiverName),
			logger.String("to", a.GiverEmail),
		)
		outcomes[i] = model.Outcome{Index: i, Assignment: a, Status: model.StatusSimulated}
	}
	return outcomes
}

// Authorizer is implemented by senders that must acquire credentials before
// the first send, e.g. through an interactive consent flow.
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// send queues every invitation and lets the worker pool deliver them.
func (d *Dispatcher) send(ctx context.Context, assignments []model.Assignment, from string) []model.Outcome {
	n := len(assignments)
	outcomes := make([]model.Outcome, n)
	recorded := make([]bool, n)

	if d.sender == nil {
		return failAll(assignments, ErrNoSender)
	}

	// credentials are acquired once under the run context, not per send deadline
	if auth, ok := d.sender.(Authorizer); ok {
		if err := auth.Authorize(ctx); err != nil {
			metrics.RecordErrorByComponent("dispatcher", "authorize_error")
			d.logger.Error(ctx, "sender authorization failed", logger.Error(err))
			return failAll(assignments, fmt.Errorf("authorize sender: %w", err))
		}
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(n))
	for i, a := range assignments {
		if !q.Enqueue(ctx, model.Delivery{
			Index:      i,
			From:       from,
			To:         a.GiverEmail,
			Subject:    InvitationSubject,
			Body:       InvitationBody(a),
			Assignment: a,
		}) {
			d.logger.Warn(ctx, "delivery not queued", logger.Int("index", i))
		}
	}
	queued := q.Len(ctx)
	_ = q.Close()

	// each worker writes only the slot of the delivery it holds
	rec := worker.RecorderFunc(func(_ context.Context, o model.Outcome) {
		outcomes[o.Index] = o
		recorded[o.Index] = true
	})

	pool := worker.NewPool(min(d.workers, n), q, d.sender, rec, worker.WithSendTimeout(d.sendTimeout))
	d.logger.Debug(ctx, "starting delivery",
		logger.Int("queued", queued),
		logger.Int("workers", pool.Size()),
	)
	pool.Start(ctx)

	finished := make(chan struct{})
	go func() {
		_ = pool.Wait(context.WithoutCancel(ctx))
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		d.logger.Warn(ctx, "dispatch cancelled, stopping workers", logger.Error(ctx.Err()))
		_ = pool.Shutdown(context.WithoutCancel(ctx))
		<-finished
	}

	stopped := worker.ErrStopped
	if err := ctx.Err(); err != nil {
		stopped = fmt.Errorf("%w: %w", worker.ErrStopped, err)
	}
	for i, a := range assignments {
		if !recorded[i] {
			outcomes[i] = model.Outcome{Index: i, Assignment: a, Status: model.StatusFailed, Err: stopped}
		}
	}

	d.logger.Info(ctx, "invitations dispatched",
		logger.Int("total", n),
		logger.Int("failed", countFailed(outcomes)),
		logger.Int("workers", pool.Size()),
	)
	return outcomes
}

func failAll(assignments []model.Assignment, err error) []model.Outcome {
	outcomes := make([]model.Outcome, len(assignments))
	for i, a := range assignments {
		outcomes[i] = model.Outcome{Index: i, Assignment: a, Status: model.StatusFailed, Err: err}
	}
	return outcomes
}

func countFailed(outcomes []model.Outcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	return failed
}

// IsStopped reports whether an outcome error means the delivery was never attempted.
func IsStopped(err error) bool {
	return errors.Is(err, worker.ErrStopped)
}
