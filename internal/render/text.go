package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var mdConverter = htmltomd.NewConverter(
	htmltomd.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// CommentMarkdown converts an HTML comment body into Markdown. On conversion failure the raw
// body is returned.
func CommentMarkdown(body string) string {
	md, err := mdConverter.ConvertString(body)
	if err != nil {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(md)
}

// Truncate cuts s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// TimeAgo renders an ISO-8601 timestamp relative to now: "just now", "5h ago", "3d ago", "2mo ago".
func TimeAgo(createdAt string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	hours := int(now.Sub(t).Hours())
	switch {
	case hours < 1:
		return "just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	return fmt.Sprintf("%dmo ago", days/30)
}

// oneLine collapses whitespace so a snippet fits on a single terminal line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
