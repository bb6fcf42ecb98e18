package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	notepress "github.com/ysenda/go-notepress"
	"github.com/ysenda/go-notepress/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrMixedInput         = errors.New("--page-id cannot be combined with input files")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrDraftKeyBatch      = errors.New("--draft-key requires exactly one input")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// maxWorkers caps the --workers flag; each worker may own a browser.
const maxWorkers = 32

// Publisher is the interface for the publishing service.
type Publisher interface {
	Publish(ctx context.Context, input notepress.Input) (*notepress.PublishResult, error)
}

// Compile-time interface implementation check.
var _ Publisher = (*notepress.Publisher)(nil)

// Pool abstracts publisher pool operations for testability.
type Pool interface {
	Acquire() Publisher
	Release(Publisher)
	Size() int
}

// publisherPool adapts notepress.PublisherPool to the Pool contract.
type publisherPool struct {
	inner *notepress.PublisherPool
}

func (p *publisherPool) Acquire() Publisher { return p.inner.Acquire() }

func (p *publisherPool) Release(pub Publisher) {
	if real, ok := pub.(*notepress.Publisher); ok {
		p.inner.Release(real)
	}
}

func (p *publisherPool) Size() int { return p.inner.Size() }

// job is one document to publish, labeled for reporting.
type job struct {
	label string
	input notepress.Input
}

// outcome holds the result of one publish.
type outcome struct {
	label    string
	result   *notepress.PublishResult
	err      error
	duration time.Duration
}

// loadRuntime loads the config, merges CLI flags over it (CLI wins), and
// derives the publisher options.
func loadRuntime(flags *publishFlags, env *Environment) (*config.Config, []notepress.Option, error) {
	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if err := mergeFlagsIntoConfig(flags, cfg); err != nil {
		return nil, nil, err
	}

	opts, err := buildOptions(flags, cfg, env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, opts, nil
}

// mergeFlagsIntoConfig merges CLI flags into config. CLI values override
// config values.
func mergeFlagsIntoConfig(flags *publishFlags, cfg *config.Config) error {
	if flags.platform.baseURL != "" {
		cfg.Platform.BaseURL = flags.platform.baseURL
	}
	if flags.platform.browserBin != "" {
		cfg.Platform.BrowserBin = flags.platform.browserBin
	}
	if flags.platform.noHeadless {
		cfg.Platform.Headless = false
	}
	if flags.missingImage != "" {
		cfg.Publish.MissingImage = flags.missingImage
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.timeout)
		}
		cfg.Publish.TimeoutSeconds = int(d / time.Second)
	}
	if len(flags.draft.tags) > 0 {
		cfg.Publish.Tags = flags.draft.tags
	}
	return cfg.Validate()
}

// buildOptions derives publisher options from the merged config and the
// credential environment.
func buildOptions(flags *publishFlags, cfg *config.Config, env *Environment) ([]notepress.Option, error) {
	var opts []notepress.Option

	if cfg.Platform.BaseURL != "" {
		opts = append(opts, notepress.WithBaseURL(cfg.Platform.BaseURL))
	}
	opts = append(opts, notepress.WithHeadless(cfg.Platform.Headless))
	if cfg.Platform.BrowserBin != "" {
		opts = append(opts, notepress.WithBrowserBin(cfg.Platform.BrowserBin))
	}
	if cfg.Publish.TimeoutSeconds > 0 {
		opts = append(opts, notepress.WithTimeout(time.Duration(cfg.Publish.TimeoutSeconds)*time.Second))
	}
	if cfg.Publish.MissingImage == config.PolicyFail {
		opts = append(opts, notepress.WithMissingImagePolicy(notepress.MissingImageFail))
	}
	opts = append(opts, notepress.WithWarnUnknownBlocks(cfg.Publish.WarnUnknownBlocks))

	if cookie := env.Getenv(envSessionCookie); cookie != "" {
		opts = append(opts, notepress.WithSession(notepress.Session{
			Account:   firstNonEmpty(env.Getenv(envAccount), cfg.Platform.Account),
			Cookie:    cookie,
			CSRFToken: env.Getenv(envCSRFToken),
		}))
	}
	if cfg.Source.ServiceURL != "" {
		opts = append(opts, notepress.WithBlockService(cfg.Source.ServiceURL, env.Getenv(envBlockToken)))
	}

	if flags.common.verbose {
		opts = append(opts, notepress.WithLogger(slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	return opts, nil
}

// buildJobs turns the positional arguments (or --page-id) into publish jobs.
func buildJobs(positionalArgs []string, flags *publishFlags, cfg *config.Config) ([]job, error) {
	base := notepress.Input{
		Title:    flags.draft.title,
		DraftKey: flags.draft.draftKey,
		Cover:    flags.draft.cover,
		Tags:     cfg.Publish.Tags,
	}

	if flags.draft.pageID != "" {
		if len(positionalArgs) > 0 {
			return nil, ErrMixedInput
		}
		input := base
		input.PageID = flags.draft.pageID
		return []job{{label: flags.draft.pageID, input: input}}, nil
	}

	if len(positionalArgs) == 0 {
		return nil, ErrNoInput
	}
	if flags.draft.draftKey != "" && len(positionalArgs) > 1 {
		return nil, ErrDraftKeyBatch
	}

	jobs := make([]job, 0, len(positionalArgs))
	for _, path := range positionalArgs {
		if err := validateMarkdownExtension(path); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path) // #nosec G304 -- input path comes from the CLI user
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		}
		input := base
		input.Markdown = string(content)
		jobs = append(jobs, job{label: path, input: input})
	}
	return jobs, nil
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers rejects out-of-range worker counts early.
func validateWorkers(workers int) error {
	if workers < 0 || workers > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, workers, maxWorkers)
	}
	return nil
}

// runPublish orchestrates the publishing process.
func runPublish(ctx context.Context, positionalArgs []string, flags *publishFlags, cfg *config.Config, pool Pool, env *Environment) error {
	jobs, err := buildJobs(positionalArgs, flags, cfg)
	if err != nil {
		return err
	}

	outcomes := publishBatch(ctx, pool, jobs)

	failed := printResults(outcomes, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d publish(es) failed", failed)
	}
	return nil
}

// publishBatch fans the jobs out over the pool. Results keep job order.
func publishBatch(ctx context.Context, pool Pool, jobs []job) []outcome {
	outcomes := make([]outcome, len(jobs))

	workers := pool.Size()
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				pub := pool.Acquire()
				start := time.Now()
				result, err := pub.Publish(ctx, jobs[i].input)
				outcomes[i] = outcome{
					label:    jobs[i].label,
					result:   result,
					err:      err,
					duration: time.Since(start),
				}
				pool.Release(pub)
			}
		}()
	}

	for i := range jobs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return outcomes
}

// printResults reports each outcome and returns the failure count.
func printResults(outcomes []outcome, quiet, verbose bool, env *Environment) int {
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "failed %s: %s\n", o.label, describeError(o.err))
			continue
		}
		if quiet {
			continue
		}
		line := fmt.Sprintf("Published %s -> %s", o.label, o.result.EditURL)
		if o.result.Partial() {
			line += fmt.Sprintf(" (%d skipped)", len(o.result.Skipped))
		}
		if verbose {
			line += fmt.Sprintf(" [%s path, %v]", o.result.Path, o.duration.Round(time.Millisecond))
		}
		fmt.Fprintln(env.Stdout, line)
		if verbose {
			for _, s := range o.result.Skipped {
				fmt.Fprintf(env.Stderr, "  skipped %s (%s): %s\n", s.Action, s.Detail, s.Reason)
			}
		}
	}
	return failed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
