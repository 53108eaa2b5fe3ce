package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	app "github.com/okian/santa/internal/app"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/internal/domain/sorter"
)

func errorMark() string { return color.New(color.FgRed).Sprint("✗") }

func statusMark(status model.OutcomeStatus) string {
	switch status {
	case model.StatusSent:
		return color.New(color.FgGreen).Sprint("✓")
	case model.StatusSimulated:
		return color.New(color.FgCyan).Sprint("~")
	default:
		return errorMark()
	}
}

// printReport lists each invitation and the totals.
func printReport(w io.Writer, report *app.Report) {
	fmt.Fprintln(w)
	if report.Artifact != "" {
		fmt.Fprintf(w, "Roster: %s\n", report.Artifact)
	}
	for _, o := range report.Outcomes {
		line := fmt.Sprintf("  %s %s <%s>", statusMark(o.Status), o.Assignment.GiverName, o.Assignment.GiverEmail)
		switch {
		case o.Err != nil && app.IsStopped(o.Err):
			line += color.New(color.FgYellow).Sprint(" (not attempted)")
		case o.Err != nil:
			line += color.New(color.FgRed).Sprintf(" %v", o.Err)
		case o.MessageID != "":
			line += fmt.Sprintf(" [%s]", o.MessageID)
		}
		fmt.Fprintln(w, line)
	}

	summary := report.Summary()
	fmt.Fprintf(w, "Sent: %d  Simulated: %d  Failed: %s\n",
		summary[model.StatusSent],
		summary[model.StatusSimulated],
		failedCount(summary[model.StatusFailed]),
	)
}

func failedCount(n int) string {
	if n == 0 {
		return "0"
	}
	return color.New(color.FgRed).Sprint(n)
}

// printSortReport lists where every file went.
func printSortReport(w io.Writer, report *sorter.Report) {
	for _, e := range report.Entries {
		switch {
		case e.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", errorMark(), e.Name, e.Err)
		case e.Pattern == sorter.NoPattern:
			fmt.Fprintf(w, "%s -> no match -> moving to %s\n", e.Name, e.Target)
		default:
			fmt.Fprintf(w, "[%d]: %s -> %s -> moving to %s\n", e.Pattern, e.Name, e.NewName, e.Target)
		}
	}
	renamed, misc, failed := report.Counts()
	fmt.Fprintf(w, "Renamed: %d  Misc: %d  Failed: %s\n", renamed, misc, failedCount(failed))
}
