package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
)

func requireLookupTool(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("which-based tests")
	}
	if _, err := exec.LookPath(LookupTool()); err != nil {
		t.Skipf("%s not available", LookupTool())
	}
}

func TestPathProberFindsShell(t *testing.T) {
	requireLookupTool(t)
	prober := NewPathProber(2 * time.Second)

	got := prober.Probe(context.Background(), domain.CommandEntry{Command: "sh -c 'echo hi'"})
	if !got.Available || got.Executable != "sh" {
		t.Fatalf("expected sh to be available, got %+v", got)
	}
}

func TestPathProberReportsMissingBinary(t *testing.T) {
	requireLookupTool(t)
	prober := NewPathProber(2 * time.Second)

	got := prober.Probe(context.Background(), domain.CommandEntry{Command: "definitely-not-a-real-binary-4f2a --help"})
	if got.Available {
		t.Fatalf("expected unavailable, got %+v", got)
	}
	if !strings.Contains(got.Error, "not found") {
		t.Fatalf("expected diagnostic message, got %q", got.Error)
	}
}

func TestPathProberEmptyCommand(t *testing.T) {
	got := NewPathProber(0).Probe(context.Background(), domain.CommandEntry{Command: "   "})
	if got.Available || got.Error == "" {
		t.Fatalf("expected unavailable with error, got %+v", got)
	}
}

func TestPathProberTimesOutSlowLookup(t *testing.T) {
	requireLookupTool(t)
	script := filepath.Join(t.TempDir(), "slow-which")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 5\n"), 0o755); err != nil {
		t.Fatalf("write lookup script: %v", err)
	}
	prober := NewPathProber(100 * time.Millisecond)
	prober.lookup = script

	started := time.Now()
	got := prober.Probe(context.Background(), domain.CommandEntry{Command: "npm test"})
	if got.Available {
		t.Fatalf("expected unavailable, got %+v", got)
	}
	if !strings.Contains(got.Error, "timed out") {
		t.Fatalf("expected timeout diagnostic, got %q", got.Error)
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Fatalf("lookup was not interrupted, took %s", elapsed)
	}
}
