package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/santa/internal/testparticipants"
)

// Default configuration constants.
const (
	defaultSuffix  = "_fixture"
	defaultTimeout = time.Minute
)

func main() {
	var (
		count   = flag.Int("count", testparticipants.DefaultCount, "Number of participants to generate")
		domain  = flag.String("domain", testparticipants.DefaultDomain, "Email domain")
		dir     = flag.String("dir", ".", "Directory for the artifact")
		suffix  = flag.String("suffix", defaultSuffix, "Artifact name suffix")
		tricky  = flag.Bool("tricky", false, "Include names with commas, quotes and non-ASCII text")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testparticipants.ShowHelp(os.Stdout)
		return
	}

	closer, err := testparticipants.SetupLogging(*logFile, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup logging: "+err.Error())
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	stats, err := testparticipants.Run(ctx, &testparticipants.Config{
		Count:    *count,
		Domain:   *domain,
		StoreDir: *dir,
		Suffix:   *suffix,
		Tricky:   *tricky,
		Verbose:  *verbose,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fixture failed: "+err.Error())
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel called explicitly above
	}

	fmt.Fprintln(os.Stdout, stats.Artifact)
}
