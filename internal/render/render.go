// Package render writes search results as styled text, JSON, YAML or a Markdown report.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"hn-discuss/internal/model"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, json, yaml/yml and markdown/md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Meta describes the search that produced a result.
type Meta struct {
	PageURL string              `json:"url" yaml:"url"`
	Filters model.SearchFilters `json:"filters" yaml:"filters"`
	HasMore bool                `json:"has_more" yaml:"has_more"`
	Now     time.Time           `json:"-" yaml:"-"`
}

type document struct {
	Meta   `yaml:",inline"`
	Result model.AggregateResult `json:"result" yaml:"result"`
}

// Result writes an aggregate result in the given format.
func Result(w io.Writer, res model.AggregateResult, meta Meta, f Format) error {
	if meta.Now.IsZero() {
		meta.Now = time.Now()
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document{Meta: meta, Result: res})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(document{Meta: meta, Result: res})
	case FormatMarkdown:
		return markdownReport(w, res, meta)
	default:
		return textReport(w, res, meta)
	}
}

// Comments writes a page of comments, as returned by the incremental loaders.
func Comments(w io.Writer, cs []model.Comment, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"comments": cs, "has_more": len(cs) > 0})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(map[string]any{"comments": cs, "has_more": len(cs) > 0})
	case FormatMarkdown:
		return markdownComments(w, cs, time.Now())
	default:
		if len(cs) == 0 {
			_, err := fmt.Fprintln(w, muted.Render("No more comments."))
			return err
		}
		now := time.Now()
		for _, c := range cs {
			if _, err := fmt.Fprintln(w, commentLine(c, now, true)); err != nil {
				return err
			}
		}
		return nil
	}
}

var (
	heading = lipgloss.NewStyle().Bold(true).Underline(true)
	title   = lipgloss.NewStyle().Bold(true)
	accent  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const snippetLen = 200

func textReport(w io.Writer, res model.AggregateResult, meta Meta) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", muted.Render("Discussions for"), meta.PageURL)
	if res.Empty() {
		b.WriteString("No HN content found for this page\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	if len(res.Stories) > 0 {
		fmt.Fprintf(&b, "\n%s\n", heading.Render("Stories"))
		for _, s := range res.Stories {
			fmt.Fprintf(&b, "%s %s\n", accent.Render(fmt.Sprintf("▲ %d", s.Points)), title.Render(s.Title))
			fmt.Fprintf(&b, "  %s\n", muted.Render(fmt.Sprintf("%d comments · by %s · %s", s.NumComments, s.Author, TimeAgo(s.CreatedAt, meta.Now))))
			fmt.Fprintf(&b, "  %s\n  %s\n", s.TargetURL(), muted.Render(s.DiscussionURL()))
			for _, c := range res.StoryComments[s.StoryID()] {
				fmt.Fprintf(&b, "    %s\n", commentLine(c, meta.Now, false))
			}
		}
	}
	if len(res.Comments) > 0 {
		fmt.Fprintf(&b, "\n%s\n", heading.Render("Comments"))
		for _, c := range res.Comments {
			fmt.Fprintf(&b, "  %s\n", commentLine(c, meta.Now, true))
		}
	}
	if meta.HasMore {
		fmt.Fprintf(&b, "\n%s\n", muted.Render("More content available (use --more)."))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func commentLine(c model.Comment, now time.Time, withStory bool) string {
	head := accent.Render(c.Author) + muted.Render(fmt.Sprintf(" · %d pts · %s", c.Points, TimeAgo(c.CreatedAt, now)))
	if withStory && c.StoryTitle != "" {
		head += muted.Render(" · on " + c.StoryTitle)
	}
	return head + "\n      " + Truncate(oneLine(CommentMarkdown(c.Text)), snippetLen)
}
