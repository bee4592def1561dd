package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/doeshing/cmdverify/internal/domain"
)

// Styles used by the renderer. Plain styles are used when colour is off.
type Styles struct {
	Accent lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
}

// NewStyles returns the palette, or unstyled text when color is false.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Accent: plain, Muted: plain, Bold: plain, Good: plain, Warn: plain, Bad: plain}
	}
	return Styles{
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Bold:   lipgloss.NewStyle().Bold(true),
		Good:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
	}
}

// ColorEnabled reports whether stdout is a terminal and NO_COLOR is unset.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Renderer prints human-readable reports.
type Renderer struct {
	out     io.Writer
	styles  Styles
	verbose bool
}

// NewRenderer builds a renderer writing to out.
func NewRenderer(out io.Writer, color, verbose bool) *Renderer {
	return &Renderer{out: out, styles: NewStyles(color), verbose: verbose}
}

// SummaryOptions select optional report sections.
type SummaryOptions struct {
	Stats      bool
	FailedOnly bool
}

// Summary prints per-command results followed by the totals.
func (r *Renderer) Summary(s domain.Summary, opts SummaryOptions) {
	st := r.styles
	for _, res := range s.Results {
		out := res.Outcome
		if opts.FailedOnly && out.Success {
			continue
		}
		if !r.verbose && out.Success && out.Severity == domain.SeverityInfo && !opts.FailedOnly {
			continue
		}
		fmt.Fprintf(r.out, "%s %s %s\n", r.symbol(out), st.Bold.Render(res.Entry.Command), st.Muted.Render("["+string(out.Category)+"]"))
		for _, loc := range res.Entry.Locations {
			fmt.Fprintf(r.out, "    %s\n", st.Accent.Render(fmt.Sprintf("%s:%d", loc.File, loc.Line)))
		}
		if out.Message != "" {
			fmt.Fprintf(r.out, "    %s\n", out.Message)
		}
		if out.Suggestion != "" && !out.Success {
			fmt.Fprintf(r.out, "    %s %s\n", st.Muted.Render("hint:"), out.Suggestion)
		}
	}
	if opts.FailedOnly {
		return
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %d command(s): %s, %s\n",
		st.Bold.Render("Checked"), s.Total,
		st.Good.Render(fmt.Sprintf("%d passed", s.Succeeded)),
		r.failedCount(s.Failed))
	var cats []string
	for _, cat := range domain.Categories() {
		if n := s.ByCategory[cat]; n > 0 {
			cats = append(cats, fmt.Sprintf("%s %d", cat, n))
		}
	}
	if len(cats) > 0 {
		fmt.Fprintf(r.out, "  %s\n", st.Muted.Render(strings.Join(cats, " · ")))
	}
	if s.Reason != "" {
		fmt.Fprintf(r.out, "  %s\n", st.Muted.Render(fmt.Sprintf("change detection: %s, %d changed file(s), %d revalidated", s.Reason, s.ChangedFiles, s.Affected)))
	}

	if opts.Stats {
		c := s.Cache
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, st.Bold.Render("Cache"))
		fmt.Fprintf(r.out, "  hits %d · misses %d · repaired %d · writes %d · hit rate %.1f%%\n",
			c.Hits, c.Misses, c.Repaired, c.Writes, c.HitRate*100)
		fmt.Fprintf(r.out, "  available %d · unavailable %d · skipped %d · %dms\n",
			s.Available, s.Unavailable, s.Skipped, s.DurationMS)
		if s.Commit != "" {
			fmt.Fprintf(r.out, "  commit %s\n", st.Accent.Render(shortCommit(s.Commit)))
		}
	}
}

// Classification prints the chain's decision for a single command.
func (r *Renderer) Classification(command string, cls domain.Classification, source, detail string) {
	st := r.styles
	fmt.Fprintf(r.out, "%s\n", st.Bold.Render(command))
	fmt.Fprintf(r.out, "  category:   %s\n", r.categoryStyle(cls.Category).Render(string(cls.Category)))
	fmt.Fprintf(r.out, "  confidence: %.2f\n", cls.Confidence)
	fmt.Fprintf(r.out, "  source:     %s\n", source)
	if detail != "" {
		fmt.Fprintf(r.out, "  rule:       %s\n", st.Muted.Render(detail))
	}
}

// Health prints doctor checks.
func (r *Renderer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		style := r.styles.Good
		switch check.Status {
		case domain.HealthWarn:
			style = r.styles.Warn
		case domain.HealthError:
			style = r.styles.Bad
		}
		fmt.Fprintf(r.out, "%s %s - %s\n",
			style.Render("["+strings.ToUpper(string(check.Status))+"]"),
			check.Name,
			check.Details)
	}
}

// History prints run records, newest first.
func (r *Renderer) History(records []domain.RunRecord) {
	st := r.styles
	for _, rec := range records {
		status := st.Good.Render("✓")
		if rec.Failed > 0 {
			status = st.Bad.Render("✗")
		}
		forced := ""
		if rec.Forced {
			forced = st.Warn.Render(" forced")
		}
		fmt.Fprintf(r.out, "%s %s %s %d/%d passed, %d hit(s), %d miss(es), %d repaired, %dms%s\n",
			status,
			st.Muted.Render(rec.StartedAt.Local().Format(domain.TimestampFormat)),
			st.Accent.Render(shortCommit(rec.Commit)),
			rec.Succeeded, rec.Total, rec.CacheHits, rec.CacheMisses, rec.Repaired, rec.DurationMS,
			forced)
	}
}

func (r *Renderer) symbol(out domain.CacheEntry) string {
	switch {
	case !out.Success && out.Severity == domain.SeverityError:
		return r.styles.Bad.Render("✗")
	case !out.Success || out.Severity == domain.SeverityWarning:
		return r.styles.Warn.Render("!")
	case out.Category == domain.CategorySkip:
		return r.styles.Muted.Render("-")
	default:
		return r.styles.Good.Render("✓")
	}
}

func (r *Renderer) failedCount(n int) string {
	text := fmt.Sprintf("%d failed", n)
	if n == 0 {
		return r.styles.Muted.Render(text)
	}
	return r.styles.Bad.Render(text)
}

func (r *Renderer) categoryStyle(c domain.Category) lipgloss.Style {
	switch c {
	case domain.CategoryDangerous:
		return r.styles.Bad
	case domain.CategoryConditional, domain.CategoryUnknown:
		return r.styles.Warn
	case domain.CategorySafe:
		return r.styles.Good
	default:
		return r.styles.Muted
	}
}

func shortCommit(commit string) string {
	if commit == "" {
		return "-"
	}
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
