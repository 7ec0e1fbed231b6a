package hackernews

import (
	"cmp"
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"hn-discuss/internal/model"
)

// Default page sizes per primitive.
const (
	CommentsPageSize        = 20
	ExactURLPageSize        = 10
	StoriesPageSize         = 10
	StoryCommentsPageSize   = 50
	domainCommentMinLength  = 50 // inclusive
	relaxedCommentMinLength = 30 // exclusive
)

const (
	tagStory   = "story"
	tagComment = "comment"
)

func pageSizeOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func searchParams(query, tag string, pageSize int) url.Values {
	return url.Values{
		"query":       {query},
		"tags":        {tag},
		"hitsPerPage": {strconv.Itoa(pageSize)},
	}
}

// SearchComments searches comments mentioning the page and keeps only long comments whose
// story URL or body contains the page's clean URL (full) or domain (partial).
// The containment check is a heuristic: full-text matches often only mention the site in passing.
func (c *Client) SearchComments(ctx context.Context, pageURL string, f model.SearchFilters, page, pageSize int) ([]model.Comment, error) {
	p, err := ParsePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	params := searchParams(p.Query(f.URLMatch), tagComment, pageSizeOr(pageSize, CommentsPageSize))
	params.Set("page", strconv.Itoa(page))
	hits := fetchHits[model.Comment](ctx, c, request{
		op: "search_comments", endpoint: c.Endpoint(f.Sort), params: params, page: page,
	}).hitsOrEmpty(ctx, c.reporter)

	needle := p.Needle(f.URLMatch)
	out := make([]model.Comment, 0, len(hits))
	for _, h := range hits {
		if textLen(h.Text) < domainCommentMinLength {
			continue
		}
		if strings.Contains(h.StoryURL, needle) || strings.Contains(h.Text, needle) {
			out = append(out, h)
		}
	}
	return out, nil
}

// SearchByExactURL runs the same query as SearchComments but only drops short comments.
func (c *Client) SearchByExactURL(ctx context.Context, pageURL string, f model.SearchFilters, page, pageSize int) ([]model.Comment, error) {
	p, err := ParsePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	params := searchParams(p.Query(f.URLMatch), tagComment, pageSizeOr(pageSize, ExactURLPageSize))
	params.Set("page", strconv.Itoa(page))
	hits := fetchHits[model.Comment](ctx, c, request{
		op: "search_by_exact_url", endpoint: c.Endpoint(f.Sort), params: params, page: page,
	}).hitsOrEmpty(ctx, c.reporter)
	return keepSubstantial(hits), nil
}

// SearchStories returns stories matching the page that have both a URL and a title.
func (c *Client) SearchStories(ctx context.Context, pageURL string, f model.SearchFilters, pageSize int) ([]model.Story, error) {
	p, err := ParsePageURL(pageURL)
	if err != nil {
		return nil, err
	}
	params := searchParams(p.Query(f.URLMatch), tagStory, pageSizeOr(pageSize, StoriesPageSize))
	hits := fetchHits[model.Story](ctx, c, request{
		op: "search_stories", endpoint: c.Endpoint(f.Sort), params: params,
	}).hitsOrEmpty(ctx, c.reporter)

	out := make([]model.Story, 0, len(hits))
	for _, h := range hits {
		if h.URL != "" && h.Title != "" {
			out = append(out, h)
		}
	}
	return out, nil
}

// CommentsForStory pages through the comments of one story. With points sort the page is
// re-ordered by points descending, since the query shape has no native point ordering.
func (c *Client) CommentsForStory(ctx context.Context, storyID int64, f model.SearchFilters, page, pageSize int) []model.Comment {
	params := searchParams("", tagComment, pageSizeOr(pageSize, StoryCommentsPageSize))
	params.Set("numericFilters", "story_id="+strconv.FormatInt(storyID, 10))
	params.Set("page", strconv.Itoa(page))
	hits := fetchHits[model.Comment](ctx, c, request{
		op: "comments_for_story", endpoint: c.Endpoint(f.Sort), params: params, storyID: storyID, page: page,
	}).hitsOrEmpty(ctx, c.reporter)

	out := keepSubstantial(hits)
	if f.Sort == model.SortPoints {
		slices.SortStableFunc(out, func(a, b model.Comment) int {
			return cmp.Compare(b.Points, a.Points)
		})
	}
	return out
}

// textLen counts UTF-16 code units, the unit the length thresholds are defined in.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func keepSubstantial(hits []model.Comment) []model.Comment {
	out := make([]model.Comment, 0, len(hits))
	for _, h := range hits {
		if textLen(h.Text) > relaxedCommentMinLength {
			out = append(out, h)
		}
	}
	return out
}
