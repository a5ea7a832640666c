package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	// Not parallel: mutates the package-level version variable.

	t.Run("ldflags version wins", func(t *testing.T) {
		orig := version
		defer func() { version = orig }()

		version = "v1.2.3"
		if got := getVersion(); got != "v1.2.3" {
			t.Errorf("expected v1.2.3, got %q", got)
		}
	})

	t.Run("falls back to build info", func(t *testing.T) {
		orig := version
		defer func() { version = orig }()

		version = ""
		if got := getVersion(); got == "" {
			t.Error("expected non-empty version")
		}
	})
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "leadlens version") {
		t.Errorf("expected version line, got %q", out)
	}
	if !strings.Contains(out, "commit:") {
		t.Errorf("expected commit line, got %q", out)
	}
	if !strings.Contains(out, "built:") {
		t.Errorf("expected build date line, got %q", out)
	}
}
