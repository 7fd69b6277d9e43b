package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/documents"
	"github.com/JaimeStill/plagiat/internal/reformulation"
	"github.com/JaimeStill/plagiat/internal/severity"
	"github.com/JaimeStill/plagiat/pkg/formatting"
)

const (
	barWidth         = 30
	displayURLLength = 60
)

type renderer struct {
	out io.Writer

	low    *color.Color
	medium *color.Color
	high   *color.Color
	title  *color.Color
	muted  *color.Color
	warn   *color.Color
}

func newRenderer(out io.Writer, noColor bool) *renderer {
	r := &renderer{
		out:    out,
		low:    color.New(color.FgGreen),
		medium: color.New(color.FgYellow),
		high:   color.New(color.FgRed, color.Bold),
		title:  color.New(color.FgCyan, color.Bold),
		muted:  color.New(color.Faint),
		warn:   color.New(color.FgYellow, color.Bold),
	}

	if noColor {
		for _, c := range []*color.Color{r.low, r.medium, r.high, r.title, r.muted, r.warn} {
			c.DisableColor()
		}
	}
	return r
}

func (r *renderer) tier(t severity.Tier) *color.Color {
	switch t {
	case severity.TierHigh:
		return r.high
	case severity.TierMedium:
		return r.medium
	default:
		return r.low
	}
}

// progressBar returns a fixed-width bar for a 0-100 progress value.
func progressBar(value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	filled := int(value / 100 * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "] " + formatting.RoundPercent(value)
}

// progress redraws the progress line in place.
func (r *renderer) progress(value float64) {
	fmt.Fprintf(r.out, "\r%s", progressBar(value))
}

func (r *renderer) endProgress() {
	fmt.Fprintln(r.out)
}

func (r *renderer) document(doc documents.Document) {
	line := fmt.Sprintf("%s (%s, %s", doc.Filename, doc.ContentType, formatting.FormatBytes(doc.SizeBytes, 1))
	if doc.PageCount != nil {
		line += fmt.Sprintf(", %d pages", *doc.PageCount)
	}
	line += ")"

	fmt.Fprintln(r.out, line)
	if !doc.Supported {
		r.warn.Fprintln(r.out, "warning: the analysis service accepts .pdf and .docx files only")
	}
}

func (r *renderer) result(res *analysis.Result) {
	tier := res.Tier()

	r.title.Fprintln(r.out, "Plagiarism score")
	r.tier(tier).Fprintf(r.out, "  %s  %s\n", formatting.FormatPercent(res.Score), tier)

	if severity.AdviseReformulation(res.Score) {
		r.warn.Fprintln(r.out, "  High similarity detected. Consider reformulating this text.")
	}

	fmt.Fprintln(r.out)
	if len(res.Sources) == 0 {
		r.muted.Fprintln(r.out, "No matching sources found.")
		return
	}

	r.title.Fprintf(r.out, "Sources (%d)\n", len(res.Sources))
	for _, src := range res.Sources {
		c := r.tier(src.Tier())
		c.Fprintf(r.out, "  %6s", formatting.FormatPercent(src.Score))
		fmt.Fprintf(r.out, "  %s\n", formatting.Truncate(src.URL, displayURLLength))
	}
}

func (r *renderer) reformulation(state reformulation.State) {
	r.title.Fprintf(r.out, "Reformulation (%s)\n", state.Method)
	r.muted.Fprintln(r.out, "Original:")
	fmt.Fprintln(r.out, indent(state.Original))
	r.muted.Fprintln(r.out, "Reformulated:")
	fmt.Fprintln(r.out, indent(state.Text))
}

func (r *renderer) failure(op string, err error) {
	r.high.Fprintf(r.out, "%s failed: %v\n", op, err)
}

func (r *renderer) success(format string, args ...any) {
	r.low.Fprintf(r.out, format+"\n", args...)
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
