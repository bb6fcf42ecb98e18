package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across invocations.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// platformFlags holds platform and browser flags.
type platformFlags struct {
	baseURL    string
	browserBin string
	noHeadless bool
}

// draftFlags holds per-draft metadata flags.
type draftFlags struct {
	title    string
	draftKey string
	cover    string
	pageID   string
	tags     []string
}

// publishFlags holds all flags for the publish run.
type publishFlags struct {
	common       commonFlags
	platform     platformFlags
	draft        draftFlags
	workers      int
	timeout      string
	envFile      string
	missingImage string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addPlatformFlags adds platform flags to a FlagSet.
func addPlatformFlags(fs *flag.FlagSet, f *platformFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "platform origin (default: https://note.com)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "pre-installed browser binary")
	fs.BoolVar(&f.noHeadless, "no-headless", false, "show the automation browser window")
}

// addDraftFlags adds draft metadata flags to a FlagSet.
func addDraftFlags(fs *flag.FlagSet, f *draftFlags) {
	fs.StringVar(&f.title, "title", "", "draft title (\"\" = auto from source)")
	fs.StringVar(&f.draftKey, "draft-key", "", "existing draft key to overwrite")
	fs.StringVar(&f.cover, "cover", "", "cover image path or URL")
	fs.StringVar(&f.pageID, "page-id", "", "publish a remote block document instead of files")
	fs.StringSliceVar(&f.tags, "tag", nil, "draft tag (repeatable)")
}

// parseFlags parses CLI flags and returns the positional args.
func parseFlags(args []string) (*publishFlags, []string, error) {
	fs := flag.NewFlagSet("notepress", flag.ContinueOnError)
	f := &publishFlags{}

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-publish timeout (e.g., 90s, 3m)")
	fs.StringVar(&f.envFile, "env-file", "", "dotenv file for session credentials")
	fs.StringVar(&f.missingImage, "missing-image", "", "missing image policy: skip, fail")

	addCommonFlags(fs, &f.common)
	addPlatformFlags(fs, &f.platform)
	addDraftFlags(fs, &f.draft)

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// printUsage writes the usage banner and flag summary.
func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(fs.Output(), "usage: notepress [flags] <input.md> [input.md ...]")
	fmt.Fprintln(fs.Output(), "       notepress [flags] --page-id <id>")
	fmt.Fprintln(fs.Output())
	fmt.Fprintln(fs.Output(), "Publishes Markdown or remote block documents as platform drafts.")
	fmt.Fprintln(fs.Output())
	fmt.Fprintln(fs.Output(), "Session credentials come from the environment (or --env-file):")
	fmt.Fprintln(fs.Output(), "  NOTEPRESS_SESSION_COOKIE, NOTEPRESS_CSRF_TOKEN,")
	fmt.Fprintln(fs.Output(), "  NOTEPRESS_ACCOUNT, NOTEPRESS_BLOCK_TOKEN")
	fmt.Fprintln(fs.Output())
	fmt.Fprintln(fs.Output(), "Flags:")
	fs.PrintDefaults()
}
