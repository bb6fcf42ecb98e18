package main

import (
	"testing"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	flags, args, err := parseFlags([]string{
		"notepress",
		"--title", "Weekly",
		"--tag", "tech",
		"--tag", "golang",
		"--no-headless",
		"-w", "3",
		"-t", "2m",
		"post.md",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if flags.draft.title != "Weekly" {
		t.Errorf("title = %q", flags.draft.title)
	}
	if len(flags.draft.tags) != 2 || flags.draft.tags[1] != "golang" {
		t.Errorf("tags = %v, want the flag repeated", flags.draft.tags)
	}
	if !flags.platform.noHeadless {
		t.Error("noHeadless = false")
	}
	if flags.workers != 3 {
		t.Errorf("workers = %d", flags.workers)
	}
	if flags.timeout != "2m" {
		t.Errorf("timeout = %q", flags.timeout)
	}
	if len(args) != 1 || args[0] != "post.md" {
		t.Errorf("positional args = %v", args)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	t.Parallel()

	flags, args, err := parseFlags([]string{"notepress", "post.md"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if flags.workers != 0 {
		t.Errorf("workers = %d, want auto", flags.workers)
	}
	if flags.platform.noHeadless {
		t.Error("noHeadless = true, want headless by default")
	}
	if flags.common.quiet || flags.common.verbose {
		t.Error("quiet/verbose should default to false")
	}
	if len(args) != 1 {
		t.Errorf("positional args = %v", args)
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, _, err := parseFlags([]string{"notepress", "--frobnicate"}); err == nil {
		t.Error("parseFlags() accepted an unknown flag")
	}
}
