// Package console reads participants interactively from a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/okian/santa/internal/domain/dedupe"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
)

// Prompt text.
const (
	Banner      = "Enter participant names and emails ('done' to finish):"
	NamePrompt  = "name: "
	EmailPrompt = "email: "
	doneWord    = "done"
)

// Collector prompts for name/email pairs until the user types done or input ends.
type Collector struct {
	in     io.Reader
	out    io.Writer
	names  func() dedupe.Deduper
	warn   *color.Color
	logger logger.Logger
}

// NewCollector creates a collector reading stdin and writing stdout.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		in:    os.Stdin,
		out:   os.Stdout,
		names: func() dedupe.Deduper { return dedupe.NewInMemoryDeduper() },
		warn:  color.New(color.FgYellow),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("collector")
	}

	return c
}

// Collect returns the participants in entry order. Blank names, repeated names
// and blank emails are refused and asked for again. A name whose email was
// never entered is dropped. Cancelling ctx returns at once, even mid-prompt.
func (c *Collector) Collect(ctx context.Context) ([]model.Participant, error) {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	lines := readLines(ctx, c.in)
	seen := c.names()
	var participants []model.Participant

	if _, err := fmt.Fprintln(c.out, Banner); err != nil {
		return nil, fmt.Errorf("write prompt: %w", err)
	}

	for {
		name, ok, err := c.ask(ctx, lines, NamePrompt)
		if err != nil {
			return participants, err
		}
		if !ok || strings.EqualFold(name, doneWord) {
			break
		}
		if name == "" {
			c.refuse("Name must not be empty.")
			continue
		}
		if seen.SeenAndRecord(ctx, name) {
			c.refuse(fmt.Sprintf("%q is already in the list, use a different name.", name))
			continue
		}

		email, ok, err := c.askEmail(ctx, lines)
		if err != nil {
			return participants, err
		}
		if !ok {
			seen.Unrecord(ctx, name)
			c.logger.Debug(ctx, "input ended before email", logger.String("name", name))
			break
		}

		participants = append(participants, model.Participant{Name: name, Email: email})
		c.logger.Debug(ctx, "participant added", logger.String("name", name), logger.Int("count", len(participants)))
	}

	c.logger.Info(ctx, "participants collected",
		logger.Int("count", len(participants)),
		logger.Int("unique_names", seen.Size()),
	)
	return participants, nil
}

func (c *Collector) askEmail(ctx context.Context, lines <-chan line) (string, bool, error) {
	for {
		email, ok, err := c.ask(ctx, lines, EmailPrompt)
		if err != nil || !ok {
			return "", ok, err
		}
		if email != "" {
			return email, true, nil
		}
		c.refuse("Email must not be empty.")
	}
}

// ask prints prompt and returns the trimmed next line; ok is false at end of input.
func (c *Collector) ask(ctx context.Context, lines <-chan line, prompt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", false, fmt.Errorf("write prompt: %w", err)
	}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case l, open := <-lines:
		if !open {
			return "", false, nil
		}
		if l.err != nil {
			return "", false, fmt.Errorf("read input: %w", l.err)
		}
		return strings.TrimSpace(l.text), true, nil
	}
}

type line struct {
	text string
	err  error
}

// readLines scans r on its own goroutine so a blocked read never holds up
// cancellation. The channel closes at end of input. A read still pending when
// ctx ends is abandoned along with its goroutine.
func readLines(ctx context.Context, r io.Reader) <-chan line {
	out := make(chan line)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- line{text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- line{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

func (c *Collector) refuse(msg string) {
	_, _ = c.warn.Fprintln(c.out, msg)
}
