// Package git wraps the git executable for change detection.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Client runs git in a repository directory. Every call is bounded by a timeout.
type Client struct {
	dir     string
	timeout time.Duration
	binary  string
}

// NewClient returns a client rooted at dir.
func NewClient(dir string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultGitTimeout
	}
	return &Client{dir: dir, timeout: timeout, binary: "git"}
}

// CurrentCommit returns the full hash of HEAD.
func (c *Client) CurrentCommit(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles returns the slash paths that differ between two commits,
// relative to the client directory. Changes outside that directory are
// omitted, so a project nested in a larger repository sees paths in the same
// form as its command locations.
func (c *Client) ChangedFiles(ctx context.Context, from, to string) ([]string, error) {
	out, err := c.run(ctx, "diff", "--name-only", "--relative", from, to)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		files = append(files, filepath.ToSlash(line))
	}
	return files, nil
}

// TopLevel returns the repository root.
func (c *Client) TopLevel(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GitDir returns the absolute path of the .git directory.
func (c *Client) GitDir(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsRepository reports whether the client directory is inside a work tree.
func (c *Client) IsRepository(ctx context.Context) bool {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Available reports whether the git binary can be found.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, c.binary, args...)
	cmd.Dir = c.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if cctx.Err() != nil {
			msg = fmt.Sprintf("timed out after %s", c.timeout)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return stdout.String(), nil
}

var _ ports.GitClient = (*Client)(nil)
