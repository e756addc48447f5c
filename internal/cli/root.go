package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/jeopardyze-client/internal/factory"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

// noticeBuffer bounds the notices kept for one command; a command triggers a
// handful at most
const noticeBuffer = 32

// runtime is the per-invocation state shared by all commands
type runtime struct {
	cfg *Config
	app *factory.App
	out *Output

	// notices buffers bus events raised while a command runs
	notices     <-chan model.Event
	stopNotices func()

	// transport overrides the HTTP transport (tests)
	transport http.RoundTripper
}

// flagValues holds persistent flags; only flags set on the command line
// override the loaded configuration
type flagValues struct {
	configFile string
	server     string
	store      string
	stateDir   string
	redisURL   string
	output     string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&runtime{})
}

func newRootCmd(rt *runtime) *cobra.Command {
	flags := &flagValues{}
	defaults := DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "jz",
		Short: "Command line client for the jeopardyze trivia API",
		Long: `jz keeps a player identity for the jeopardyze backend.

On first use it signs in as a guest and stores the credential per server.
Expired guest sessions are renewed transparently; expired sign-ins ask you to
log in again.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", DefaultConfigPath(), "Config file")
	pf.StringVar(&flags.server, "server", defaults.ServerURL, "API root URL (env: JZ_SERVER)")
	pf.StringVar(&flags.store, "store", defaults.Store, "Credential store: file, redis, memory (env: JZ_STORE)")
	pf.StringVar(&flags.stateDir, "state-dir", defaults.StateDir, "Directory of the file store (env: JZ_STATE_DIR)")
	pf.StringVar(&flags.redisURL, "redis-url", "", "Redis URL for --store redis (env: JZ_REDIS_URL)")
	pf.StringVarP(&flags.output, "output", "o", defaults.Output, "Output format: text, json (env: JZ_OUTPUT)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newWhoamiCmd(rt))
	rootCmd.AddCommand(newLoginCmd(rt))
	rootCmd.AddCommand(newRegisterCmd(rt))
	rootCmd.AddCommand(newVerifyEmailCmd(rt))
	rootCmd.AddCommand(newLogoutCmd(rt))
	rootCmd.AddCommand(newCallCmd(rt))
	rootCmd.AddCommand(newHealthCmd(rt))

	// Tear down inside RunE so notices are reported even when a command fails
	for _, sub := range rootCmd.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.Join(err, rt.teardown()) }()
			return run(cmd, args)
		}
	}

	return rootCmd
}

// setup loads configuration and wires the application
func (rt *runtime) setup(cmd *cobra.Command, flags *flagValues) error {
	cfg, err := LoadConfig(flags.configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("server") {
		cfg.ServerURL = flags.server
	}
	if changed("store") {
		cfg.Store = flags.store
	}
	if changed("state-dir") {
		cfg.StateDir = flags.stateDir
	}
	if changed("redis-url") {
		cfg.RedisURL = flags.redisURL
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	fc := cfg.FactoryConfig()
	fc.Logger = logger
	fc.Transport = rt.transport

	app, err := factory.New(fc)
	if err != nil {
		return fmt.Errorf("failed to set up client: %w", err)
	}

	rt.cfg = cfg
	rt.app = app
	rt.out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt.notices, rt.stopNotices = app.Bus.SubscribeChan(noticeBuffer)
	return nil
}

// flushNotices reports the notices raised while the command ran
func (rt *runtime) flushNotices() {
	if rt.stopNotices == nil {
		return
	}
	rt.stopNotices()
	rt.stopNotices = nil

	for e := range rt.notices {
		if e.Type == model.EventCredentialUpdated && !rt.cfg.Verbose {
			continue
		}
		rt.out.Notify(e)
	}
}

func (rt *runtime) teardown() error {
	if rt.app == nil {
		return nil
	}
	rt.flushNotices()
	err := rt.app.Close()
	rt.app = nil
	return err
}

// initialize establishes the session. A failed guest bootstrap is tolerated
// when the command is about to establish an identity itself.
func (rt *runtime) initialize(ctx context.Context, tolerateBootstrapFailure bool) error {
	err := rt.app.Session.Initialize(ctx)
	if err == nil {
		return nil
	}
	if tolerateBootstrapFailure && errors.Is(err, model.ErrBootstrapFailure) {
		rt.app.Logger.Warn("continuing without a guest session", slog.String("error", err.Error()))
		return nil
	}
	return fmt.Errorf("could not establish a session: %w", err)
}

// hintFor returns the advice printed with a failed command
func hintFor(err error, serverURL string) string {
	switch {
	case errors.Is(err, model.ErrBootstrapFailure):
		return fmt.Sprintf("Check that %s is reachable, then retry.", serverURL)
	case errors.Is(err, model.ErrMalformedCredential):
		return "The server returned an unusable credential; retry, or run `jz logout`."
	default:
		return ""
	}
}

// Execute runs the root command
func Execute() {
	rt := &runtime{}
	cmd := newRootCmd(rt)
	if err := cmd.Execute(); err != nil {
		out := rt.out
		serverURL := DefaultConfig().ServerURL
		if rt.cfg != nil {
			serverURL = rt.cfg.ServerURL
		}
		if out == nil {
			out = NewOutput("text", os.Stdout, os.Stderr)
		}
		out.PrintError(err, hintFor(err, serverURL))
		_ = rt.teardown()
		os.Exit(1)
	}
}
