package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	content := []byte("\x89PNG\r\n\x1a\nbytes")
	path, cleanup, err := WriteTempFile(content, "png")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	defer cleanup()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("staged content = %q, want %q", got, content)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want the extension preserved", path)
	}
}

func TestWriteTempFileCleanup(t *testing.T) {
	t.Parallel()

	path, cleanup, err := WriteTempFile([]byte("x"), "tmp")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cleanup left %s behind", path)
	}
}

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{
			name:      "valid",
			extension: "png",
		},
		{
			name:      "empty",
			extension: "",
			wantErr:   ErrExtensionEmpty,
		},
		{
			name:      "forward slash",
			extension: "a/b",
			wantErr:   ErrExtensionPathTraversal,
		},
		{
			name:      "backslash",
			extension: `a\b`,
			wantErr:   ErrExtensionPathTraversal,
		},
		{
			name:      "null byte",
			extension: "a\x00b",
			wantErr:   ErrExtensionPathTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists() = false for an existing file")
	}
	if FileExists(dir) {
		t.Error("FileExists() = true for a directory")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists() = true for a missing path")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"notepress", false},
		{"my-config", false},
		{"./conf.yaml", true},
		{"../shared/conf.yaml", true},
		{"/etc/notepress/conf.yaml", true},
		{`C:\notepress\conf.yaml`, true},
		{"sub/dir", true},
	}

	for _, tt := range tests {
		if got := IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	if !IsURL("https://cdn.example/pic.png") || !IsURL("http://cdn.example/pic.png") {
		t.Error("IsURL() = false for HTTP URLs")
	}
	if IsURL("/local/pic.png") || IsURL("ftp://x") {
		t.Error("IsURL() = true for non-HTTP sources")
	}
}
