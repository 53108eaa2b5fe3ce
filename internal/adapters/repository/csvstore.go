package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

// Artifact naming and permission constants.
const (
	artifactDateLayout = "01-02-2006" // MM-DD-YYYY
	artifactExt        = ".csv"
	dirPermission      = 0o755
	filePermission     = 0o644
	utf8BOM            = "\ufeff"
)

// ArtifactName returns the file name for a roster saved at t.
func ArtifactName(t time.Time, suffix string) string {
	return t.Format(artifactDateLayout) + suffix + artifactExt
}

// CSVStore implements Store over CSV files in a directory.
type CSVStore struct {
	dir    string
	now    func() time.Time
	logger logger.Logger
}

// NewCSVStore creates a store writing to the current directory by default.
func NewCSVStore(opts ...Option) *CSVStore {
	s := &CSVStore{
		dir: ".",
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}

	return s
}

// Save writes the header and one row per participant. A same-day artifact
// with the same suffix is replaced.
func (s *CSVStore) Save(ctx context.Context, participants []model.Participant, suffix string) (artifact string, err error) {
	start := time.Now()
	defer func() {
		recordOp("save", err, start)
	}()

	if strings.ContainsAny(suffix, `/\`) {
		return "", fmt.Errorf("%w: suffix %q must not contain a path separator", ErrIO, suffix)
	}

	if err := os.MkdirAll(s.dir, dirPermission); err != nil {
		return "", fmt.Errorf("%w: create store dir: %w", ErrIO, err)
	}

	artifact = filepath.Join(s.dir, ArtifactName(s.now(), suffix))

	tmp, err := os.CreateTemp(s.dir, ".roster-*"+artifactExt)
	if err != nil {
		return "", fmt.Errorf("%w: create artifact: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeRoster(tmp, participants); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: write artifact: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close artifact: %w", ErrIO, err)
	}
	if err := os.Chmod(tmpName, filePermission); err != nil {
		return "", fmt.Errorf("%w: chmod artifact: %w", ErrIO, err)
	}
	if err := os.Rename(tmpName, artifact); err != nil {
		return "", fmt.Errorf("%w: rename artifact: %w", ErrIO, err)
	}

	s.logger.Info(ctx, "participants saved",
		logger.String("artifact", artifact),
		logger.Int("count", len(participants)),
	)
	return artifact, nil
}

func writeRoster(w io.Writer, participants []model.Participant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range participants {
		if err := cw.Write([]string{p.Name, p.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads an artifact back into participants, in file order.
func (s *CSVStore) Load(ctx context.Context, artifact string) (participants []model.Participant, err error) {
	start := time.Now()
	defer func() {
		recordOp("load", err, start)
	}()

	f, err := os.Open(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, artifact, err)
	}
	defer func() { _ = f.Close() }()

	participants, err = readRoster(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", artifact, err)
	}

	s.logger.Info(ctx, "participants loaded",
		logger.String("artifact", artifact),
		logger.Int("count", len(participants)),
	)
	return participants, nil
}

func readRoster(r io.Reader) ([]model.Participant, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1 // field counts are checked per row below

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrFormat)
	}
	if err != nil {
		return nil, readError(err)
	}
	if !isHeader(header) {
		return nil, fmt.Errorf("%w: header must be %q, got %q",
			ErrFormat, strings.Join(Header, ","), strings.Join(header, ","))
	}

	var participants []model.Participant
	for record := 2; ; record++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		switch {
		case len(row) != len(Header):
			return nil, &RowError{Record: record, Reason: fmt.Sprintf("expected %d fields, got %d", len(Header), len(row))}
		case strings.TrimSpace(row[0]) == "":
			return nil, &RowError{Record: record, Reason: "missing name"}
		case strings.TrimSpace(row[1]) == "":
			return nil, &RowError{Record: record, Reason: "missing email"}
		}
		participants = append(participants, model.Participant{Name: row[0], Email: row[1]})
	}
	return participants, nil
}

func isHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, want := range Header {
		got := strings.TrimSpace(row[i])
		if i == 0 {
			got = strings.TrimPrefix(got, utf8BOM)
		}
		if got != want {
			return false
		}
	}
	return true
}

func readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func recordOp(op string, err error, start time.Time) {
	result := "ok"
	switch {
	case errors.Is(err, ErrFormat):
		result = "format_error"
	case err != nil:
		result = "io_error"
	}
	metrics.RecordStoreOperation(op, result, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordErrorByComponent("store", result)
	}
}
