package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"snex/internal/config"
	"snex/internal/namespace"
	"snex/internal/prof"
	"snex/internal/session"
	"snex/internal/templates"
	"snex/internal/trace"
	"snex/internal/types"
)

// environment is the resolved configuration of one invocation: snex.toml
// overlaid with command line flags.
type environment struct {
	cfg            config.Config
	padding        types.PaddingMode
	maxDiagnostics int
	colour         bool
	timings        bool
	tracer         trace.Tracer
	traceFormat    trace.Format
	logger         *zap.Logger
	profile        *prof.Session
}

var env *environment

func setupEnv(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	var cfg config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	if flags.Changed("max-diagnostics") {
		if cfg.Compiler.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	for flag, dst := range map[string]*string{
		"trace":        &cfg.Trace.Level,
		"trace-output": &cfg.Trace.Output,
		"trace-format": &cfg.Trace.Format,
	} {
		if flags.Changed(flag) {
			if *dst, err = flags.GetString(flag); err != nil {
				return err
			}
		}
	}
	if flags.Changed("trace") && !flags.Changed("trace-output") && cfg.Trace.Output == "" {
		cfg.Trace.Output = "-"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e := &environment{cfg: cfg, maxDiagnostics: cfg.Compiler.MaxDiagnostics}
	if e.padding, err = cfg.PaddingMode(); err != nil {
		return err
	}
	if e.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	colourMode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	if e.colour, err = resolveColour(colourMode); err != nil {
		return err
	}
	color.NoColor = !e.colour

	logLevel, err := flags.GetString("log")
	if err != nil {
		return err
	}
	if e.logger, err = newLogger(logLevel); err != nil {
		return err
	}
	namespace.SetLogger(e.logger.Named("namespace"))
	templates.SetLogger(e.logger.Named("templates"))
	session.SetLogger(e.logger.Named("session"))

	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return err
	}
	e.traceFormat = tcfg.Format
	if e.tracer, err = trace.New(tcfg); err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), e.tracer))

	var popts prof.Options
	for flag, dst := range map[string]*string{
		"cpuprofile":    &popts.CPU,
		"memprofile":    &popts.Mem,
		"runtime-trace": &popts.Runtime,
	} {
		if *dst, err = flags.GetString(flag); err != nil {
			return err
		}
	}
	if popts.Enabled() {
		if e.profile, err = prof.Start(popts); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	env = e
	return nil
}

func resolveColour(mode string) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, fmt.Errorf("unsupported --color %q (must be auto, on or off)", mode)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" || level == "off" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// closeEnv stops profiling and flushes the tracer and the logger. A trace
// kept in memory, because no output was configured, is written to stderr
// when the command failed.
func closeEnv(cmd *cobra.Command, runErr error) {
	if env == nil {
		return
	}
	var err error
	if ring, ok := env.tracer.(*trace.RingTracer); ok && runErr != nil {
		w := cmd.ErrOrStderr()
		fmt.Fprintln(w, "snexc: trace of the failed run:")
		err = ring.Dump(w, env.traceFormat)
	}
	err = multierr.Combine(err, env.profile.Stop(), env.tracer.Flush(), env.tracer.Close())
	_ = env.logger.Sync()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "snexc: %v\n", err)
	}
	env = nil
}
