package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// renderReport prints the run summary
func renderReport(w io.Writer, r *model.RunReport) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render("Run "+r.RunID))
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf("%s  (%s)", r.StartedAt.Local().Format("2006-01-02 15:04"), r.FinishedAt.Sub(r.StartedAt).Round(100*time.Millisecond))))

	s := r.Steps
	if c := s.Collection; c != nil {
		line(&b, "Collected", fmt.Sprintf("%d articles from %d sources", c.Total, c.Sources))
		if n := len(c.FailedFeeds); n > 0 {
			fmt.Fprintf(&b, "  %s\n", warnStyle.Render(fmt.Sprintf("%d feeds failed", n)))
		}
	}
	if a := s.Analysis; a != nil {
		line(&b, "Analyzed", fmt.Sprintf("%d articles", a.Total))
		for _, imp := range []model.Importance{model.ImportanceCritical, model.ImportanceHigh, model.ImportanceMedium, model.ImportanceLow} {
			if n := a.ByImportance[imp]; n > 0 {
				fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("- %s: %d", imp, n)))
			}
		}
	}
	if a := s.Archive; a != nil {
		line(&b, "Archived", archiveLine(a))
	}
	if f := s.LinkedInFilter; f != nil {
		line(&b, "Relevant", fmt.Sprintf("%d of %d (stage 1: %d, fallbacks: %d)", f.Output, f.Input, f.Stage1, f.Fallbacks))
	}
	if g := s.LinkedInGen; g != nil {
		text := fmt.Sprintf("%d posts (%d attempted, %d failed, tokens %d in / %d out)", g.Generated, g.Attempted, g.Failed, g.InputTokens, g.OutputTokens)
		if g.Aborted {
			text += " " + warnStyle.Render("aborted: quota exhausted")
		}
		line(&b, "Generated", text)
	}
	if a := s.LinkedInArchive; a != nil {
		line(&b, "Posts saved", archiveLine(a))
	}
	if s.LinkedInElapsed != "" {
		line(&b, "Post steps", s.LinkedInElapsed)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", warnStyle.Render(fmt.Sprintf("%d errors", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render("- "+util.Truncate(e, 120)))
		}
	}

	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", okStyle.Render(fmt.Sprintf("✓ %-12s", label)), value)
}

func archiveLine(a *model.ArchiveResult) string {
	text := fmt.Sprintf("%d saved, %d duplicates skipped", a.Success, a.Skipped)
	if a.Failed > 0 {
		text += ", " + warnStyle.Render(fmt.Sprintf("%d failed", a.Failed))
	}
	return text
}

// renderRanking prints analyzed articles, highest importance first
func renderRanking(w io.Writer, articles []model.Article, limit int) {
	if limit <= 0 || limit > len(articles) {
		limit = len(articles)
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Top %d of %d articles", limit, len(articles))))
	for i, a := range articles[:limit] {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, okStyle.Render(fmt.Sprintf("%4.1f", a.ImportanceScore)), util.Truncate(a.Title, 90))
		fmt.Fprintf(w, "     %s\n", dimStyle.Render(fmt.Sprintf("%s · %s · %s · %s", a.Importance, a.Category, a.Source, strings.Join(a.Tags, ", "))))
	}

	counts := map[model.Category]int{}
	for _, a := range articles {
		counts[a.Category]++
	}
	cats := make([]string, 0, len(counts))
	for c, n := range counts {
		cats = append(cats, fmt.Sprintf("%s %d", c, n))
	}
	sort.Strings(cats)
	fmt.Fprintln(w, dimStyle.Render("By category: "+strings.Join(cats, ", ")))
}
