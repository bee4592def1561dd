// Package probe checks whether documented executables exist on the host.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// PathProber looks executables up with `which` (or `where` on Windows).
type PathProber struct {
	timeout time.Duration
	lookup  string
}

// NewPathProber builds a prober with the given per-lookup timeout.
func NewPathProber(timeout time.Duration) *PathProber {
	if timeout <= 0 {
		timeout = domain.DefaultProbeTimeout
	}
	return &PathProber{timeout: timeout, lookup: LookupTool()}
}

// LookupTool returns the platform PATH lookup utility.
func LookupTool() string {
	if runtime.GOOS == "windows" {
		return "where"
	}
	return "which"
}

// Probe implements ports.AvailabilityProber.
func (p *PathProber) Probe(ctx context.Context, entry domain.CommandEntry) domain.Availability {
	executable := entry.Executable()
	result := domain.Availability{Executable: executable}
	if executable == "" {
		result.Error = "empty command"
		return result
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, p.lookup, executable)
	// Bound the wait for output pipes held open by children of a killed lookup.
	cmd.WaitDelay = p.timeout
	out, err := cmd.CombinedOutput()
	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		result.Error = fmt.Sprintf("%s %s timed out after %s", p.lookup, executable, p.timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Error = fmt.Sprintf("%s not found on PATH", executable)
		} else {
			result.Error = fmt.Sprintf("%s lookup failed: %v", p.lookup, err)
		}
	case strings.TrimSpace(string(out)) == "":
		result.Error = fmt.Sprintf("%s not found on PATH", executable)
	default:
		result.Available = true
	}
	return result
}

var _ ports.AvailabilityProber = (*PathProber)(nil)
