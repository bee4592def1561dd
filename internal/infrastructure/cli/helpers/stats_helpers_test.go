package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCalculateTopCounts(t *testing.T) {
	got := CalculateTopCounts(map[string]int{"safe": 3, "dangerous": 1, "conditional": 3}, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "conditional" || got[1].Label != "safe" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestCalculateSuccessRate(t *testing.T) {
	if got := CalculateSuccessRate(3, 4); got != 75 {
		t.Fatalf("rate = %v, want 75", got)
	}
	if got := CalculateSuccessRate(0, 0); got != 0 {
		t.Fatalf("empty rate = %v", got)
	}
}

func TestCalculateDirectorySize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := CalculateDirectorySize(dir)
	if err != nil || size != 15 {
		t.Fatalf("size = %d, %v", size, err)
	}
	if size, err := CalculateDirectorySize(filepath.Join(dir, "missing")); err != nil || size != 0 {
		t.Fatalf("missing dir size = %d, %v", size, err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{512: "512 B", 2048: "2.0 KiB", 5 * 1024 * 1024: "5.0 MiB"}
	for n, want := range cases {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
