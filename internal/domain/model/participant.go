// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Participant is one person taking part in a run.
type Participant struct {
	Name  string // unique within a run
	Email string // where the assignment is mailed
}

// Assignment pairs a giver with the participant they buy a gift for.
type Assignment struct {
	GiverName      string
	GiverEmail     string
	RecipientName  string
	RecipientEmail string
}

// NewAssignment builds an Assignment from a giver and a recipient.
func NewAssignment(giver, recipient Participant) Assignment {
	return Assignment{
		GiverName:      giver.Name,
		GiverEmail:     giver.Email,
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
	}
}

// Mode selects whether invitations are delivered or only printed.
type Mode int

const (
	ModeLive Mode = iota
	ModeDryRun
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeDryRun:
		return "dry-run"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "live" or "dry-run" (also "dry_run", "dryrun", "debug").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "live":
		return ModeLive, nil
	case "dry-run", "dry_run", "dryrun", "debug":
		return ModeDryRun, nil
	default:
		return ModeLive, fmt.Errorf("unknown mode: %q", s)
	}
}
