// Package markdown finds shell commands in documentation files.
package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Location types recorded on extracted commands.
const (
	TypeCodeBlock  = "code-block"
	TypeInlineCode = "inline-code"
)

var shellLanguages = map[string]bool{
	"bash":          true,
	"sh":            true,
	"shell":         true,
	"zsh":           true,
	"console":       true,
	"shell-session": true,
	"terminal":      true,
}

// promptOnly languages mix commands and output; only prompted lines count.
var promptOnly = map[string]bool{
	"console":       true,
	"shell-session": true,
	"terminal":      true,
}

// knownTools gates inline code spans and unlabelled blocks so prose snippets
// and program output are not mistaken for commands.
var knownTools = map[string]bool{
	"npm": true, "npx": true, "yarn": true, "pnpm": true, "node": true, "bun": true, "deno": true,
	"git": true, "go": true, "make": true, "cargo": true, "rustup": true,
	"docker": true, "kubectl": true, "helm": true, "terraform": true,
	"pip": true, "pip3": true, "python": true, "python3": true, "poetry": true, "uv": true,
	"brew": true, "apt": true, "apt-get": true, "curl": true, "wget": true,
	"mvn": true, "gradle": true, "dotnet": true, "bundle": true, "gem": true, "rake": true,
}

// Extractor parses markdown with goldmark and returns commands in document order.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor returns an extractor using the CommonMark parser.
func NewExtractor() *Extractor {
	return &Extractor{md: goldmark.New()}
}

// Extract returns the commands found in fenced code blocks and inline code spans.
func (e *Extractor) Extract(path string, content []byte) []domain.ExtractedCommand {
	doc := e.md.Parser().Parse(text.NewReader(content))
	lineStarts := computeLineStarts(content)

	var out []domain.ExtractedCommand
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			out = append(out, e.fenced(path, node, content, lineStarts)...)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if cmd, line, ok := inlineCommand(node, content, lineStarts); ok {
				out = append(out, domain.ExtractedCommand{
					Command: cmd,
					File:    path,
					Line:    line,
					Type:    TypeInlineCode,
				})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func (e *Extractor) fenced(path string, block *ast.FencedCodeBlock, content []byte, lineStarts []int) []domain.ExtractedCommand {
	lang := strings.ToLower(string(block.Language(content)))
	if lang != "" && !shellLanguages[lang] {
		return nil
	}

	var (
		out     []domain.ExtractedCommand
		pending strings.Builder
		start   int
	)
	flush := func() {
		cmd := domain.NormalizeCommand(pending.String())
		pending.Reset()
		if cmd == "" {
			return
		}
		if lang == "" && !knownTools[firstToken(cmd)] {
			return
		}
		out = append(out, domain.ExtractedCommand{
			Command:  cmd,
			File:     path,
			Line:     start,
			Type:     TypeCodeBlock,
			Language: lang,
		})
	}

	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw := strings.TrimRight(string(seg.Value(content)), "\r\n")
		line := offsetToLine(lineStarts, seg.Start)

		if pending.Len() == 0 {
			cmd, ok := commandLine(raw, promptOnly[lang])
			if !ok {
				continue
			}
			start = line
			raw = cmd
		}

		trimmed := strings.TrimSpace(raw)
		if strings.HasSuffix(trimmed, "\\") {
			pending.WriteString(strings.TrimSpace(strings.TrimSuffix(trimmed, "\\")))
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(trimmed)
		flush()
	}
	flush()
	return out
}

// commandLine strips a shell prompt and rejects blank lines and comments.
func commandLine(raw string, requirePrompt bool) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	switch {
	case strings.HasPrefix(trimmed, "$ "):
		trimmed = strings.TrimSpace(trimmed[2:])
	case requirePrompt:
		return "", false
	}
	return trimmed, trimmed != ""
}

func inlineCommand(span *ast.CodeSpan, content []byte, lineStarts []int) (string, int, bool) {
	var b strings.Builder
	start := -1
	for c := span.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if start < 0 {
			start = t.Segment.Start
		}
		b.Write(t.Segment.Value(content))
	}
	cmd := domain.NormalizeCommand(strings.TrimPrefix(strings.TrimSpace(b.String()), "$ "))
	if start < 0 || cmd == "" || !strings.Contains(cmd, " ") || !knownTools[firstToken(cmd)] {
		return "", 0, false
	}
	return cmd, offsetToLine(lineStarts, start), true
}

func firstToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func computeLineStarts(content []byte) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 1-based line number.
func offsetToLine(lineStarts []int, offset int) int {
	return sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > offset })
}

var _ ports.CommandExtractor = (*Extractor)(nil)
