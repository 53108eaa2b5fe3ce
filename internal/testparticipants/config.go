package testparticipants

import "time"

// Config holds configuration for a fixture run.
type Config struct {
	Count    int    // number of participants to generate
	Domain   string // email domain
	StoreDir string // where the roster artifact is written
	Suffix   string // artifact name suffix
	Tricky   bool   // include names that need CSV quoting
	Verbose  bool   // log every generated participant
}

// Stats holds fixture run statistics.
type Stats struct {
	Generated   int
	Loaded      int
	Assignments int
	Artifact    string
	StartTime   time.Time
	Duration    time.Duration
}
