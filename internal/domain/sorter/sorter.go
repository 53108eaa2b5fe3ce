// Package sorter renames files whose names embed a month-first or day-first
// date so the date reads year-first, and moves them out of a base directory.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

const dirPermission = 0o755

// Request names the directories of one sort.
type Request struct {
	BaseDir string
	DestDir string
	MiscDir string
}

// Entry is the fate of one file.
type Entry struct {
	Name    string
	NewName string // empty when no pattern matched
	Pattern int    // NoPattern when no pattern matched
	Target  string
	Err     error
}

// Report lists every file considered, in directory order.
type Report struct {
	Entries []Entry
}

// Counts returns how many files were renamed, sent to misc, and failed.
func (r *Report) Counts() (renamed, misc, failed int) {
	for _, e := range r.Entries {
		switch {
		case e.Err != nil:
			failed++
		case e.Pattern == NoPattern:
			misc++
		default:
			renamed++
		}
	}
	return renamed, misc, failed
}

// Sort moves every regular file in BaseDir: matched files go to DestDir under
// their year-first name, the rest go to MiscDir unchanged. A failed move is
// recorded in the report and does not stop the run. Existing targets are
// never overwritten.
func Sort(ctx context.Context, req Request) (*Report, error) {
	log := logger.Get().Named("sorter")

	entries, err := os.ReadDir(req.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBaseDir, req.BaseDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, req.BaseDir)
	}

	for _, dir := range []string{req.DestDir, req.MiscDir} {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	report := &Report{Entries: make([]Entry, 0, len(files))}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry := Entry{Name: name, Pattern: NoPattern}
		if newName, idx, ok := Rename(name); ok {
			entry.NewName = newName
			entry.Pattern = idx
			entry.Target = filepath.Join(req.DestDir, newName)
		} else {
			entry.Target = filepath.Join(req.MiscDir, name)
		}

		entry.Err = move(filepath.Join(req.BaseDir, name), entry.Target)
		switch {
		case entry.Err != nil:
			metrics.RecordSorterFile("failed")
			metrics.RecordErrorByComponent("sorter", "move_error")
			log.Warn(ctx, "move failed", logger.String("file", name), logger.Error(entry.Err))
		case entry.Pattern == NoPattern:
			metrics.RecordSorterFile("misc")
			log.Debug(ctx, "no date pattern", logger.String("file", name), logger.String("target", entry.Target))
		default:
			metrics.RecordSorterFile("renamed")
			log.Debug(ctx, "renamed",
				logger.String("file", name),
				logger.String("new_name", entry.NewName),
				logger.String("pattern", PatternName(entry.Pattern)),
			)
		}
		report.Entries = append(report.Entries, entry)
	}

	renamed, misc, failed := report.Counts()
	log.Info(ctx, "sort finished",
		logger.Int("renamed", renamed),
		logger.Int("misc", misc),
		logger.Int("failed", failed),
	)
	return report, nil
}

func move(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, to)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(from, to)
}
