package hints

import (
	"strings"
	"testing"
)

func TestForBrowserConnectInContainer(t *testing.T) {
	orig := IsInContainer
	IsInContainer = func() bool { return true }
	t.Cleanup(func() { IsInContainer = orig })

	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("JENKINS_URL", "")

	got := ForBrowserConnect()
	if !strings.Contains(got, "ROD_NO_SANDBOX=1") {
		t.Errorf("ForBrowserConnect() = %q, want sandbox hint in a container", got)
	}
	if !strings.Contains(got, "ROD_BROWSER_BIN") {
		t.Errorf("ForBrowserConnect() = %q, want browser binary hint", got)
	}
}

func TestForBrowserConnectQuietOutsideCI(t *testing.T) {
	orig := IsInContainer
	IsInContainer = func() bool { return false }
	t.Cleanup(func() { IsInContainer = orig })

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("JENKINS_URL", "")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	if got := ForBrowserConnect(); got != "" {
		t.Errorf("ForBrowserConnect() = %q, want no hints with a configured browser", got)
	}
}

func TestForSession(t *testing.T) {
	t.Parallel()

	got := ForSession()
	if !strings.HasPrefix(got, "\n  hint: ") {
		t.Errorf("ForSession() = %q, want standard hint prefix", got)
	}
	if !strings.Contains(got, "NOTEPRESS_SESSION_COOKIE") {
		t.Errorf("ForSession() = %q, want credential variable named", got)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	paths := []string{"conf.yaml", "/home/u/.config/go-notepress/conf.yaml"}
	got := ForConfigNotFound(paths)
	if !strings.Contains(got, "--config") {
		t.Errorf("ForConfigNotFound() = %q, want --config suggested", got)
	}
	if !strings.Contains(got, "/home/u/.config/go-notepress/conf.yaml") {
		t.Errorf("ForConfigNotFound() = %q, want user config path suggested", got)
	}
}

func TestForTimeout(t *testing.T) {
	t.Parallel()

	if got := ForTimeout(); !strings.Contains(got, "--timeout") {
		t.Errorf("ForTimeout() = %q", got)
	}
}
