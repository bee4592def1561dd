package cache

import (
	"testing"
)

func TestWatermarkReadWrite(t *testing.T) {
	w := NewWatermark(t.TempDir())

	commit, err := w.Read()
	if err != nil || commit != "" {
		t.Fatalf("missing watermark should read empty, got %q err=%v", commit, err)
	}
	if err := w.Write("0123abcd"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	commit, err = w.Read()
	if err != nil || commit != "0123abcd" {
		t.Fatalf("got %q err=%v", commit, err)
	}
	if err := w.Remove(); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if err := w.Remove(); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
}
