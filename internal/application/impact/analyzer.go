// Package impact decides which documented commands must be revalidated
// after the repository moved since the last successful run.
package impact

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Analyzer compares the watermark commit with HEAD and maps the diff onto commands.
type Analyzer struct {
	git       ports.GitClient
	watermark ports.WatermarkStore
	rules     []Rule
	logger    ports.Logger
}

// NewAnalyzer builds an analyzer. settings are the root-relative slash paths of
// the config file and knowledge base; they are checked first, then the
// built-in rules, then the knowledge base rules. Rules with an unparsable glob
// are logged and dropped.
func NewAnalyzer(git ports.GitClient, watermark ports.WatermarkStore, fileRules []domain.FileRule, settings []string, logger ports.Logger) *Analyzer {
	rules := append([]Rule{SettingsRule(settings)}, BuiltinRules()...)
	for _, fr := range fileRules {
		if !doublestar.ValidatePattern(fr.FilePattern) {
			logger.Warn("ignoring knowledge base file rule with invalid glob", map[string]interface{}{
				"pattern": fr.FilePattern,
			})
			continue
		}
		rules = append(rules, KnowledgeRule(fr))
	}
	return &Analyzer{git: git, watermark: watermark, rules: rules, logger: logger}
}

// Analyze fills state with the current commit, the changed files and the
// affected command set.
func (a *Analyzer) Analyze(ctx context.Context, state *domain.RunState, commands []domain.CommandEntry) {
	current, err := a.git.CurrentCommit(ctx)
	if err != nil {
		a.logger.Warn("git unavailable, revalidating every command", map[string]interface{}{"error": err.Error()})
		a.everything(state, commands, domain.ImpactGitUnavailable)
		return
	}
	state.CurrentCommit = current

	last, err := a.watermark.Read()
	if err != nil {
		a.logger.Warn("could not read last validated commit", map[string]interface{}{"error": err.Error()})
		last = ""
	}
	state.LastValidatedCommit = last

	switch {
	case last == "":
		a.everything(state, commands, domain.ImpactFirstRun)
		return
	case last == current:
		state.Reason = domain.ImpactUnchanged
		return
	}

	files, err := a.git.ChangedFiles(ctx, last, current)
	if err != nil {
		a.logger.Warn("git diff failed, revalidating every command", map[string]interface{}{
			"from":  last,
			"to":    current,
			"error": err.Error(),
		})
		a.everything(state, commands, domain.ImpactDiffFailed)
		return
	}

	state.Reason = domain.ImpactDiff
	for _, f := range files {
		state.ChangedFiles[f] = struct{}{}
	}
	a.apply(state, files, commands)
	a.logger.Debug("change impact computed", map[string]interface{}{
		"changed":  len(files),
		"affected": len(state.AffectedCommands),
	})
}

func (a *Analyzer) apply(state *domain.RunState, files []string, commands []domain.CommandEntry) {
	for _, file := range files {
		for _, rule := range a.rules {
			if !rule.Matches(file) {
				continue
			}
			if rule.Everything {
				a.logger.Debug("rule invalidates everything", map[string]interface{}{"rule": rule.Name, "file": file})
				a.everything(state, commands, domain.ImpactDiff)
				return
			}
			for _, entry := range commands {
				if rule.Affects(file, entry) {
					state.AffectedCommands[entry.Command] = struct{}{}
				}
			}
		}
	}
}

func (a *Analyzer) everything(state *domain.RunState, commands []domain.CommandEntry, reason domain.ImpactReason) {
	state.Everything = true
	state.Reason = reason
	for _, entry := range commands {
		state.AffectedCommands[entry.Command] = struct{}{}
	}
}

var _ ports.ImpactAnalyzer = (*Analyzer)(nil)
