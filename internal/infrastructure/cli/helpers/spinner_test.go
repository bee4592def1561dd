package helpers

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDisabledWritesNothing(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "verifying", false)
	s.Start()
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestSpinnerClearsLineOnStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "verifying", true)
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "verifying")
	assert.True(t, strings.HasSuffix(out, "\r\033[K"), "output %q", out)
}
