// Command srfax sends and manages faxes from the command line.
//
// Credentials come from srfax.yml, a .env file or SRFAX_ environment
// variables:
//
//	SRFAX_ACCESS_ID=12345 SRFAX_ACCESS_PASSWORD=secret \
//	SRFAX_CALLER_ID=5551234567 SRFAX_SENDER_EMAIL=fax@example.com \
//	srfax queue --to +15557654321 invoice.pdf
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	srfax "github.com/vingd/srfax-go"
	"github.com/vingd/srfax-go/internal/config"
)

// dateLayout is the layout of --from and --until.
const dateLayout = "2006-01-02"

// Config holds the streams the command reads and writes.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	envFile    string
	output     string
	baseURL    string
	timeout    time.Duration
	verbose    bool
}

// env is what every command runs with. It is filled in before the
// command's RunE is called.
type env struct {
	client *srfax.Client
	out    *printer
	cfg    Config
	logger *zap.Logger
}

func run(args []string, cfg Config) error {
	root := newRootCmd(cfg)
	// A nil slice makes cobra fall back to os.Args.
	argv := []string{}
	if len(args) > 1 {
		argv = args[1:]
	}
	root.SetArgs(argv)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(cfg Config) *cobra.Command {
	var g globals
	e := &env{cfg: cfg}

	root := &cobra.Command{
		Use:           "srfax",
		Short:         "Send and manage faxes through SRFax",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errors.New("no command given")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() {
				return nil
			}
			return setup(e, &g)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to a config file (default ./srfax.yml)")
	flags.StringVar(&g.envFile, "env-file", ".env", "dotenv file to load if present")
	flags.StringVarP(&g.output, "output", "o", "json", "output format: json or yaml")
	flags.StringVar(&g.baseURL, "base-url", "", "override the API endpoint")
	flags.DurationVar(&g.timeout, "timeout", 0, "override the request timeout")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		queueCmd(e),
		statusCmd(e),
		sentCmd(e),
		receivedCmd(e),
		retrieveCmd(e),
		deleteCmd(e),
		stopCmd(e),
		viewedCmd(e),
		usageCmd(e),
	)
	return root
}

// setup loads configuration and builds the client shared by the commands.
func setup(e *env, g *globals) error {
	out, err := newPrinter(g.output, e.cfg.Stdout)
	if err != nil {
		return err
	}

	if err := loadEnvFile(g.envFile); err != nil {
		return err
	}
	conf, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.baseURL != "" {
		conf.Client.BaseURL = g.baseURL
	}
	if g.timeout > 0 {
		conf.Client.Timeout = g.timeout
	}
	if g.verbose {
		conf.Log.Level = "debug"
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(conf.Log, e.cfg.Stderr)
	if err != nil {
		return err
	}

	client, err := srfax.New(conf.Account.AccessID, conf.Account.AccessPassword,
		srfax.WithBaseURL(conf.Client.BaseURL),
		srfax.WithTimeout(conf.Client.Timeout),
		srfax.WithCallerID(conf.Account.CallerID),
		srfax.WithSenderEmail(conf.Account.SenderEmail),
		srfax.WithAccountCode(conf.Account.AccountCode),
		srfax.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	e.client, e.out, e.logger = client, out, logger
	return nil
}

// runE prefixes the command's errors with its name.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		return nil
	}
}

// loadEnvFile loads path into the environment. A missing file is ignored;
// variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// newLogger builds a zap logger writing to w.
func newLogger(conf config.Log, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if conf.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// dateRange parses --from and --until. Both empty means no range.
func dateRange(from, until string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = time.Parse(dateLayout, from); err != nil {
			return start, end, fmt.Errorf("--from: %w", err)
		}
	}
	if until != "" {
		if end, err = time.Parse(dateLayout, until); err != nil {
			return start, end, fmt.Errorf("--until: %w", err)
		}
	}
	return start, end, nil
}

func faxIDs(args []string) []srfax.FaxID {
	ids := make([]srfax.FaxID, len(args))
	for i, a := range args {
		ids[i] = srfax.FaxID(a)
	}
	return ids
}

func parseDirection(s string) (srfax.Direction, error) {
	switch strings.ToLower(s) {
	case "out", "outbound", "sent":
		return srfax.Outbound, nil
	case "in", "inbound", "received":
		return srfax.Inbound, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
