package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/avstrong/campusnest/internal/client"
	"github.com/avstrong/campusnest/internal/config"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/mess"
	"github.com/avstrong/campusnest/internal/stress"
)

var errMissingFlag = errors.New("missing required flag")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("stress-mess", pflag.ContinueOnError)

	defaults := stress.DefaultConfig()

	configPath := fs.String("config", "", "path to a YAML config file (or CAMPUSNEST_CONFIG)")
	base := fs.String("base", "", "backend base URL (required)")
	messID := fs.String("messId", "", "mess to subscribe to (required)")
	concurrency := fs.Int("concurrency", defaults.Concurrency, "maximum requests in flight")
	requests := fs.Int("requests", defaults.Requests, "total requests to send")
	tokensPath := fs.String("tokens", "", "JSON array of bearer tokens (falls back to TOKEN_LIST)")
	timeout := fs.Duration("timeout", defaults.Timeout, "per request timeout")
	plan := fs.String("plan", defaults.Plan, "mess plan to subscribe with")
	out := fs.String("out", "", "summary file (default stress-mess-summary.json)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)

		return 1
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)

		return 1
	}
	defer l.Sync()

	for _, f := range []struct{ name, value string }{{"base", *base}, {"messId", *messID}} {
		if f.value == "" {
			l.LogErrorf("--%s: %v", f.name, errMissingFlag)

			return 1
		}
	}

	tokens, err := stress.LoadTokens(*tokensPath, os.Getenv("TOKEN_LIST"))
	if err != nil {
		l.LogErrorf("Could not resolve tokens: %v", err)

		return 1
	}

	hcfg := stress.Config{
		Concurrency: pick(fs, "concurrency", *concurrency, cfg.Stress.Concurrency),
		Requests:    pick(fs, "requests", *requests, cfg.Stress.Requests),
		Timeout:     pick(fs, "timeout", *timeout, cfg.Stress.Timeout),
		Tokens:      tokens,
		MessID:      *messID,
		Plan:        pick(fs, "plan", *plan, cfg.Stress.Plan),
		SampleSize:  cfg.Stress.SampleSize,
	}

	opts := []client.RequestOption{
		client.WithLogger(l),
		client.WithUserAgent("campusnest-stress-mess/1.0"),
	}

	if cfg.API.Debug {
		opts = append(opts, client.WithDebugLog(l))
	}

	c, err := client.New(*base, opts...)
	if err != nil {
		l.LogErrorf("Could not build client: %v", err)

		return 1
	}

	harness, err := stress.New(l, mess.NewTrigger(c.Mess), hcfg)
	if err != nil {
		l.LogErrorf("Invalid stress configuration: %v", err)

		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l.LogInfo("Sending %d subscribe requests to mess %s with concurrency %d using %d token(s)",
		hcfg.Requests, hcfg.MessID, hcfg.Concurrency, len(tokens))

	summary := harness.Run(ctx)

	path := *out
	if path == "" {
		path = cfg.Stress.SummaryPath
	}

	if err := stress.WriteSummary(path, summary); err != nil {
		l.LogErrorf("Could not write summary: %v", err)

		return 1
	}

	fmt.Println(summary.String())
	fmt.Printf("summary written to %s\n", path)

	return 0
}

// pick prefers an explicitly set flag over the config value.
func pick[T any](fs *pflag.FlagSet, name string, flagValue, configValue T) T {
	if fs.Changed(name) {
		return flagValue
	}

	return configValue
}
