// Package aggregator turns a page URL and filters into stories, general comments and
// per-story comments, with exact-then-domain fallback and page-wise loaders.
//
// The aggregator holds no pagination state: every loader takes the page to fetch and
// callers keep their own counters.
package aggregator

import (
	"context"
	"log/slog"

	"hn-discuss/internal/hackernews"
	"hn-discuss/internal/model"

	"github.com/sourcegraph/conc/iter"
)

const (
	// MaxStories caps the stories returned and the stories whose comments are fetched.
	MaxStories = 3
	// MaxGeneralComments caps the general comments returned by SearchAll.
	MaxGeneralComments = 10
	// StoryPageSize is the page size for per-story comment pages.
	StoryPageSize = 20
)

// Searcher is the set of fetch-and-filter primitives the aggregator composes.
// *hackernews.Client implements it.
type Searcher interface {
	SearchStories(ctx context.Context, pageURL string, f model.SearchFilters, pageSize int) ([]model.Story, error)
	SearchComments(ctx context.Context, pageURL string, f model.SearchFilters, page, pageSize int) ([]model.Comment, error)
	SearchByExactURL(ctx context.Context, pageURL string, f model.SearchFilters, page, pageSize int) ([]model.Comment, error)
	CommentsForStory(ctx context.Context, storyID int64, f model.SearchFilters, page, pageSize int) []model.Comment
}

var _ Searcher = (*hackernews.Client)(nil)

// Aggregator is the search orchestrator.
type Aggregator struct {
	searcher Searcher
	logger   *slog.Logger
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for search summaries.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

func New(s Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{searcher: s, logger: slog.Default()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// SearchAll runs stories, per-story comments and, when no story has comments, the general
// comment fallback. Only invalid filters or an invalid page URL produce an error.
func (a *Aggregator) SearchAll(ctx context.Context, pageURL string, f model.SearchFilters) (model.AggregateResult, error) {
	if err := validate(pageURL, f); err != nil {
		return model.AggregateResult{}, err
	}

	var stories []model.Story
	if f.WantsStories() {
		var err error
		stories, err = a.searcher.SearchStories(ctx, pageURL, f, hackernews.StoriesPageSize)
		if err != nil {
			return model.AggregateResult{}, err
		}
	}

	storyComments := a.commentsForTopStories(ctx, stories, f)

	var general []model.Comment
	if len(storyComments) == 0 && f.WantsComments() {
		var err error
		general, err = a.generalComments(ctx, pageURL, f, 0)
		if err != nil {
			return model.AggregateResult{}, err
		}
	}

	res := model.AggregateResult{
		Stories:       []model.Story{},
		Comments:      []model.Comment{},
		StoryComments: storyComments,
	}
	if f.Type != model.TypeComment {
		res.Stories = capped(stories, MaxStories)
	}
	if f.Type != model.TypeStory {
		res.Comments = capped(general, MaxGeneralComments)
	}
	a.logger.InfoContext(ctx, "aggregator: search complete",
		"url", pageURL, "type", f.Type, "url_match", f.URLMatch, "sort", f.Sort,
		"stories", len(res.Stories), "comments", len(res.Comments), "story_comments", len(res.StoryComments))
	return res, nil
}

// LoadMoreGeneral fetches one more page of general comments using the same exact-then-domain tiers.
// An empty result means there is nothing more.
func (a *Aggregator) LoadMoreGeneral(ctx context.Context, pageURL string, f model.SearchFilters, page int) ([]model.Comment, error) {
	if err := validate(pageURL, f); err != nil {
		return nil, err
	}
	return a.generalComments(ctx, pageURL, f, page)
}

// LoadMoreForStory fetches one more page of a story's comments.
// An empty result means there is nothing more. Only invalid filters produce an error.
func (a *Aggregator) LoadMoreForStory(ctx context.Context, storyID int64, f model.SearchFilters, page int) ([]model.Comment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return a.searcher.CommentsForStory(ctx, storyID, f, page, StoryPageSize), nil
}

// commentsForTopStories fetches the first page of comments for up to MaxStories stories
// concurrently and waits for all of them. Failed fetches already come back empty.
// All of them run at once regardless of GOMAXPROCS.
func (a *Aggregator) commentsForTopStories(ctx context.Context, stories []model.Story, f model.SearchFilters) map[int64][]model.Comment {
	out := map[int64][]model.Comment{}
	top := capped(stories, MaxStories)
	if len(top) == 0 {
		return out
	}
	type storyResult struct {
		id       int64
		comments []model.Comment
	}
	batch := iter.Mapper[model.Story, storyResult]{MaxGoroutines: len(top)}
	results := batch.Map(top, func(s *model.Story) storyResult {
		id := s.StoryID()
		if id == 0 {
			return storyResult{}
		}
		return storyResult{id: id, comments: a.searcher.CommentsForStory(ctx, id, f, 0, StoryPageSize)}
	})
	for _, r := range results {
		if r.id > 0 && len(r.comments) > 0 {
			out[r.id] = r.comments
		}
	}
	return out
}

// generalComments tries the exact-URL pass first and only falls back to the domain pass when
// it yields nothing.
func (a *Aggregator) generalComments(ctx context.Context, pageURL string, f model.SearchFilters, page int) ([]model.Comment, error) {
	exact, err := a.searcher.SearchByExactURL(ctx, pageURL, f, page, hackernews.ExactURLPageSize)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		return exact, nil
	}
	a.logger.DebugContext(ctx, "aggregator: exact url pass empty, falling back to domain", "url", pageURL, "page", page)
	return a.searcher.SearchComments(ctx, pageURL, f, page, hackernews.CommentsPageSize)
}

func validate(pageURL string, f model.SearchFilters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := hackernews.ParsePageURL(pageURL)
	return err
}

func capped[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T{}, s...)
}
