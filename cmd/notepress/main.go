package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	notepress "github.com/ysenda/go-notepress"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	flags, positionalArgs, err := parseFlags(os.Args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(ExitSuccess)
		}
		fmt.Fprintln(env.Stderr, err)
		os.Exit(ExitUsage)
	}

	if err := validateWorkers(flags.workers); err != nil {
		fmt.Fprintln(env.Stderr, err)
		os.Exit(ExitUsage)
	}

	// Load .env credentials before reading the environment. A missing
	// default file is fine; an explicit --env-file must exist.
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			fmt.Fprintf(env.Stderr, "loading env file: %v\n", err)
			os.Exit(ExitIO)
		}
	} else {
		_ = godotenv.Load()
	}

	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	cfg, opts, err := loadRuntime(flags, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err))
		os.Exit(exitCodeFor(err))
	}

	poolSize := notepress.ResolvePoolSize(flags.workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "notepress %s, pool size %d\n", Version, poolSize)
	}
	pool := notepress.NewPublisherPool(poolSize, opts...)
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runPublish(ctx, positionalArgs, flags, cfg, &publisherPool{inner: pool}, env); err != nil {
		fmt.Fprintln(env.Stderr, describeError(err))
		os.Exit(exitCodeFor(err))
	}
}
