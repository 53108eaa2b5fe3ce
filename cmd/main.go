package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/santa/internal/adapters/mail"
	"github.com/okian/santa/internal/config"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

func main() {
	if err := logger.Init(); err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(newCLI(os.Stdin, os.Stdout, os.Stderr)).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand shares.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	envFile    string
	logLevel   string
	cfg        *config.Config

	// newSender builds the live mail sender; replaced in tests.
	newSender func(cfg *config.Config, prompt io.Writer) mail.Sender
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{
		in:        in,
		out:       out,
		errOut:    errOut,
		newSender: gmailSender,
	}
}

func gmailSender(cfg *config.Config, prompt io.Writer) mail.Sender {
	return mail.NewGmailSender(
		mail.WithCredentialsFile(cfg.CredentialsFile),
		mail.WithTokenFile(cfg.TokenFile),
		mail.WithScopes(cfg.GmailScopes...),
		mail.WithPromptWriter(prompt),
	)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "santa",
		Short: "Secret Santa organizer",
		Long: `santa collects participants, saves the roster as a dated CSV file,
draws a Secret Santa assignment where nobody gets themselves, and emails
every giver their recipient through Gmail.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig(cmd.Context())
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", config.DefaultEnvFile, "dotenv file with "+config.EnvPrefix+"* variables")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")

	root.AddCommand(runCmd(c))
	root.AddCommand(dispatchCmd(c))
	root.AddCommand(sortCmd(c))

	return root
}

func (c *cli) loadConfig(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.WithFile(c.configPath), config.WithEnvFile(c.envFile))
	if err != nil {
		return c.fail(err)
	}

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBucketsMS),
	)

	c.cfg = cfg
	return nil
}

// fail prints a fatal error and hands it back for the exit status.
func (c *cli) fail(err error) error {
	fmt.Fprintln(c.errOut, errorMark()+" "+err.Error())
	return err
}

func (c *cli) writeMetrics(ctx context.Context) {
	if c.cfg == nil {
		return
	}
	if err := metrics.WriteTextfile(c.cfg.MetricsFile); err != nil {
		logger.Get().Warn(ctx, "failed to write metrics", logger.String("metrics_file", c.cfg.MetricsFile), logger.Error(err))
	}
}
