package impact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/pkg/logger"
)

type stubGit struct {
	head    string
	headErr error
	files   []string
	diffErr error
	diffs   int
}

func (g *stubGit) CurrentCommit(context.Context) (string, error) {
	return g.head, g.headErr
}

func (g *stubGit) ChangedFiles(context.Context, string, string) ([]string, error) {
	g.diffs++
	return g.files, g.diffErr
}

type stubWatermark struct {
	commit string
	err    error
}

func (w *stubWatermark) Read() (string, error) { return w.commit, w.err }

func (w *stubWatermark) Write(c string) error {
	w.commit = c
	return nil
}

func entry(cmd, file string) domain.CommandEntry {
	return domain.CommandEntry{Command: cmd, Locations: []domain.Location{{File: file, Line: 1, Type: "code-block"}}}
}

var corpus = []domain.CommandEntry{
	entry("npm test", "docs/guide.md"),
	entry("make build", "docs/guide.md"),
	entry("npm install", "README.md"),
	entry("pip install -r requirements.txt", "README.md"),
	entry("go test ./...", "CONTRIBUTING.md"),
	entry("docker compose up", "README.md"),
}

var settingsFiles = []string{".cmdverify.yaml", ".cmdverify/knowledge.json"}

func analyze(t *testing.T, git *stubGit, wm *stubWatermark, rules []domain.FileRule) *domain.RunState {
	t.Helper()
	state := domain.NewRunState("run", timeZero)
	NewAnalyzer(git, wm, rules, settingsFiles, logger.Nop()).Analyze(context.Background(), state, corpus)
	return state
}

func TestAnalyzeFirstRunAffectsEverything(t *testing.T) {
	state := analyze(t, &stubGit{head: "abc"}, &stubWatermark{}, nil)

	assert.Equal(t, domain.ImpactFirstRun, state.Reason)
	assert.True(t, state.Everything)
	assert.Equal(t, "abc", state.CurrentCommit)
	assert.Len(t, state.AffectedCommands, len(corpus))
}

func TestAnalyzeUnchangedAffectsNothing(t *testing.T) {
	git := &stubGit{head: "abc"}
	state := analyze(t, git, &stubWatermark{commit: "abc"}, nil)

	assert.Equal(t, domain.ImpactUnchanged, state.Reason)
	assert.False(t, state.Everything)
	assert.Empty(t, state.AffectedCommands)
	assert.Zero(t, git.diffs, "no diff when commits match")
}

func TestAnalyzeMarkdownChangeIsLocal(t *testing.T) {
	git := &stubGit{head: "def", files: []string{"docs/guide.md"}}
	state := analyze(t, git, &stubWatermark{commit: "abc"}, nil)

	require.Equal(t, domain.ImpactDiff, state.Reason)
	assert.False(t, state.Everything)
	assert.True(t, state.Affected("npm test"))
	assert.True(t, state.Affected("make build"))
	assert.False(t, state.Affected("npm install"))
	assert.False(t, state.Affected("go test ./..."))
	assert.Equal(t, []string{"docs/guide.md"}, state.SortedChangedFiles())
}

func TestAnalyzeBuiltinRules(t *testing.T) {
	tests := []struct {
		name string
		file string
		want []string
	}{
		{"package manifest", "package.json", []string{"npm test", "npm install"}},
		{"nested lockfile", "web/yarn.lock", []string{"npm test", "npm install"}},
		{"build config", "tsconfig.build.json", []string{"npm test", "make build", "go test ./..."}},
		{"makefile", "Makefile", []string{"npm test", "make build", "go test ./..."}},
		{"source tree", "internal/cache/store.go", []string{"npm test", "go test ./..."}},
		{"python manifest", "requirements-dev.txt", []string{"pip install -r requirements.txt"}},
		{"unrelated file", "LICENSE", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			git := &stubGit{head: "def", files: []string{tt.file}}
			state := analyze(t, git, &stubWatermark{commit: "abc"}, nil)

			var got []string
			for _, e := range corpus {
				if state.Affected(e.Command) {
					got = append(got, e.Command)
				}
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestAnalyzeKnowledgeBaseRules(t *testing.T) {
	rules := []domain.FileRule{
		{FilePattern: "docker/**", Mode: domain.InvalidatePrefix, Prefixes: []string{"docker"}},
		{FilePattern: ".tool-versions", Mode: domain.InvalidateAll},
		{FilePattern: "[", Mode: domain.InvalidateAll},
	}

	state := analyze(t, &stubGit{head: "b", files: []string{"docker/Dockerfile"}}, &stubWatermark{commit: "a"}, rules)
	assert.True(t, state.Affected("docker compose up"))
	assert.False(t, state.Affected("npm test"))

	state = analyze(t, &stubGit{head: "b", files: []string{".tool-versions"}}, &stubWatermark{commit: "a"}, rules)
	assert.True(t, state.Everything)
	assert.Equal(t, domain.ImpactDiff, state.Reason)
}

func TestAnalyzeDegradesOnGitFailures(t *testing.T) {
	state := analyze(t, &stubGit{headErr: errors.New("not a git repository")}, &stubWatermark{commit: "abc"}, nil)
	assert.Equal(t, domain.ImpactGitUnavailable, state.Reason)
	assert.True(t, state.Everything)
	assert.Empty(t, state.CurrentCommit)

	state = analyze(t, &stubGit{head: "def", diffErr: errors.New("bad object abc")}, &stubWatermark{commit: "abc"}, nil)
	assert.Equal(t, domain.ImpactDiffFailed, state.Reason)
	assert.True(t, state.Everything)
	assert.Equal(t, "def", state.CurrentCommit)
}

func TestAnalyzeUnreadableWatermarkIsFirstRun(t *testing.T) {
	state := analyze(t, &stubGit{head: "abc"}, &stubWatermark{err: errors.New("permission denied")}, nil)
	assert.Equal(t, domain.ImpactFirstRun, state.Reason)
	assert.True(t, state.Everything)
}

func TestAnalyzeSettingsChangeAffectsEverything(t *testing.T) {
	for _, file := range settingsFiles {
		t.Run(file, func(t *testing.T) {
			state := analyze(t, &stubGit{head: "c2", files: []string{"LICENSE", file}}, &stubWatermark{commit: "c1"}, nil)
			assert.True(t, state.Everything)
			assert.Equal(t, domain.ImpactDiff, state.Reason)
			assert.Len(t, state.AffectedCommands, len(corpus))
		})
	}

	state := analyze(t, &stubGit{head: "c2", files: []string{"docs/knowledge.json"}}, &stubWatermark{commit: "c1"}, nil)
	assert.False(t, state.Everything, "only the configured paths count")
}
