// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/ysenda/go-notepress/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN or --browser-bin to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForSession returns hints for missing or rejected session credentials.
func ForSession() string {
	return format("set NOTEPRESS_SESSION_COOKIE (and NOTEPRESS_CSRF_TOKEN) or pass --env-file")
}

// ForTimeout returns a hint about increasing the timeout for slow runs.
func ForTimeout() string {
	return format("for image-heavy documents, raise --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-notepress") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// format wraps a single hint in the standard presentation.
func format(hint string) string {
	return "\n  hint: " + hint
}

// formatHints joins multiple hints, one line each.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	var b strings.Builder
	for _, h := range hints {
		b.WriteString(format(h))
	}
	return b.String()
}
