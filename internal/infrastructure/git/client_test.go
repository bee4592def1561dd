package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	gitRun(t, dir, "init", "-q")
	gitRun(t, dir, "config", "user.email", "test@example.com")
	gitRun(t, dir, "config", "user.name", "test")
	gitRun(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	gitRun(t, dir, "add", "-A")
	gitRun(t, dir, "commit", "-q", "-m", "update "+name)
}

func TestClientCurrentCommitAndDiff(t *testing.T) {
	dir := initRepo(t)
	commitFile(t, dir, "README.md", "# readme\n")
	client := NewClient(dir, 5*time.Second)
	ctx := context.Background()

	first, err := client.CurrentCommit(ctx)
	if err != nil || len(first) < 40 {
		t.Fatalf("CurrentCommit = %q, %v", first, err)
	}

	commitFile(t, dir, "docs/guide.md", "```bash\nnpm test\n```\n")
	second, err := client.CurrentCommit(ctx)
	if err != nil || second == first {
		t.Fatalf("expected a new commit, got %q err=%v", second, err)
	}

	files, err := client.ChangedFiles(ctx, first, second)
	if err != nil {
		t.Fatalf("ChangedFiles error: %v", err)
	}
	if len(files) != 1 || files[0] != "docs/guide.md" {
		t.Fatalf("changed files = %v", files)
	}
}

func TestClientChangedFilesRelativeToNestedProject(t *testing.T) {
	repo := initRepo(t)
	commitFile(t, repo, "site/docs/guide.md", "```bash\nnpm test\n```\n")
	project := filepath.Join(repo, "site")
	client := NewClient(project, 5*time.Second)
	ctx := context.Background()

	first, err := client.CurrentCommit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	commitFile(t, repo, "site/docs/guide.md", "```bash\nnpm run build\n```\n")
	commitFile(t, repo, "api/README.md", "# api\n")
	second, err := client.CurrentCommit(ctx)
	if err != nil {
		t.Fatal(err)
	}

	files, err := client.ChangedFiles(ctx, first, second)
	if err != nil {
		t.Fatalf("ChangedFiles error: %v", err)
	}
	if len(files) != 1 || files[0] != "docs/guide.md" {
		t.Fatalf("changed files = %v, want [docs/guide.md]", files)
	}

	top, err := client.TopLevel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(top) != filepath.Base(repo) {
		t.Fatalf("TopLevel = %s, want %s", top, repo)
	}
}

func TestClientFailsOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	client := NewClient(t.TempDir(), 5*time.Second)
	if _, err := client.CurrentCommit(context.Background()); err == nil {
		t.Fatal("expected error outside a repository")
	}
	if _, err := client.ChangedFiles(context.Background(), "deadbeef", "cafebabe"); err == nil {
		t.Fatal("expected diff error for unknown commits")
	}
}

func TestClientIsRepository(t *testing.T) {
	dir := initRepo(t)
	if !NewClient(dir, 5*time.Second).IsRepository(context.Background()) {
		t.Fatal("expected initialised directory to be a repository")
	}
	if NewClient(t.TempDir(), 5*time.Second).IsRepository(context.Background()) {
		t.Fatal("plain temp dir reported as repository")
	}
}
