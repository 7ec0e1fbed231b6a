package render

import (
	"bytes"
	_ "embed"
	"io"
	"strings"
	"text/template"
	"time"

	"hn-discuss/internal/model"

	"gopkg.in/yaml.v3"
)

type mdComment struct {
	Author        string
	Points        int
	Ago           string
	StoryTitle    string
	DiscussionURL string
	Quoted        string
}

type mdStory struct {
	Title         string
	URL           string
	Points        int
	NumComments   int
	Author        string
	Ago           string
	DiscussionURL string
	Comments      []mdComment
}

type mdData struct {
	Frontmatter string
	PageURL     string
	Empty       bool
	Stories     []mdStory
	Comments    []mdComment
}

type frontmatter struct {
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Type      string `yaml:"type"`
	URLMatch  string `yaml:"url_match"`
	Sort      string `yaml:"sort"`
	Stories   int    `yaml:"stories"`
	Comments  int    `yaml:"comments"`
	HasMore   bool   `yaml:"has_more"`
	Generated string `yaml:"generated"`
}

//go:embed discussion.md.tmpl
var discussionTpl string

var compiled = template.Must(template.New("discussion").Parse(discussionTpl))

func markdownReport(w io.Writer, res model.AggregateResult, meta Meta) error {
	total := len(res.Comments)
	for _, cs := range res.StoryComments {
		total += len(cs)
	}
	fm, err := yaml.Marshal(frontmatter{
		Title:     "HN discussions for " + meta.PageURL,
		URL:       meta.PageURL,
		Type:      string(meta.Filters.Type),
		URLMatch:  string(meta.Filters.URLMatch),
		Sort:      string(meta.Filters.Sort),
		Stories:   len(res.Stories),
		Comments:  total,
		HasMore:   meta.HasMore,
		Generated: meta.Now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	d := mdData{
		Frontmatter: string(fm),
		PageURL:     meta.PageURL,
		Empty:       res.Empty(),
	}
	for _, s := range res.Stories {
		ms := mdStory{
			Title:         s.Title,
			URL:           s.TargetURL(),
			Points:        s.Points,
			NumComments:   s.NumComments,
			Author:        s.Author,
			Ago:           TimeAgo(s.CreatedAt, meta.Now),
			DiscussionURL: s.DiscussionURL(),
		}
		for _, c := range res.StoryComments[s.StoryID()] {
			ms.Comments = append(ms.Comments, toMDComment(c, meta.Now))
		}
		d.Stories = append(d.Stories, ms)
	}
	for _, c := range res.Comments {
		d.Comments = append(d.Comments, toMDComment(c, meta.Now))
	}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func markdownComments(w io.Writer, cs []model.Comment, now time.Time) error {
	var b strings.Builder
	for _, c := range cs {
		mc := toMDComment(c, now)
		b.WriteString("> **" + mc.Author + "** · " + mc.Ago + "\n>\n" + mc.Quoted + "\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func toMDComment(c model.Comment, now time.Time) mdComment {
	return mdComment{
		Author:        c.Author,
		Points:        c.Points,
		Ago:           TimeAgo(c.CreatedAt, now),
		StoryTitle:    c.StoryTitle,
		DiscussionURL: c.DiscussionURL(),
		Quoted:        quote(CommentMarkdown(c.Text)),
	}
}

// quote prefixes every line with "> " so a comment renders as one blockquote.
func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
