package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/cmdverify/internal/pkg/logger"
)

func TestWatcherReportsMarkdownChanges(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}

	changes := make(chan []string, 1)
	w, err := NewWatcher(WatcherOptions{
		Root:     root,
		Debounce: 50 * time.Millisecond,
		Logger:   logger.Nop(),
		OnChange: func(_ context.Context, paths []string) {
			select {
			case changes <- paths:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(docs, "guide.md"), []byte("# guide\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		if len(paths) == 0 {
			t.Fatal("expected changed paths")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	w := &Watcher{root: "/repo", skip: []string{"/repo/.cmdverify"}}
	cases := map[string]bool{
		"/repo/README.md":                true,
		"/repo/docs/setup.markdown":      true,
		"/repo/main.go":                  false,
		"/repo/.cmdverify/cache/notes.md": false,
	}
	for path, want := range cases {
		if got := w.relevant(path); got != want {
			t.Errorf("relevant(%q) = %v, want %v", path, got, want)
		}
	}
}
