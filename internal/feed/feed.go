// Package feed holds the caller-side view of one page's discussion: what has been shown,
// which page each stream is on, and whether offering "load more" makes sense.
package feed

import (
	"context"
	"log/slog"

	"hn-discuss/internal/model"
)

const (
	generalMoreThreshold = 10 // a full first page of general comments
	storyMoreThreshold   = 20 // a full page of story comments
)

// Loader is what a Feed needs from the aggregator.
type Loader interface {
	SearchAll(ctx context.Context, pageURL string, f model.SearchFilters) (model.AggregateResult, error)
	LoadMoreGeneral(ctx context.Context, pageURL string, f model.SearchFilters, page int) ([]model.Comment, error)
	LoadMoreForStory(ctx context.Context, storyID int64, f model.SearchFilters, page int) ([]model.Comment, error)
}

// Feed accumulates pages for one URL and filter set. It is not safe for concurrent use.
type Feed struct {
	loader  Loader
	pageURL string
	filters model.SearchFilters

	result      model.AggregateResult
	generalPage int
	storyPages  map[int64]int
	hasMore     bool
}

func New(l Loader, pageURL string, f model.SearchFilters) *Feed {
	return &Feed{loader: l, pageURL: pageURL, filters: f, storyPages: map[int64]int{}}
}

// Filters returns the active filters.
func (fd *Feed) Filters() model.SearchFilters { return fd.filters }

// Search runs a fresh search from page 0 and resets all counters.
func (fd *Feed) Search(ctx context.Context) error {
	res, err := fd.loader.SearchAll(ctx, fd.pageURL, fd.filters)
	if err != nil {
		return err
	}
	fd.result = res
	fd.generalPage = 0
	if len(res.Comments) > 0 {
		fd.generalPage = 1
	}
	fd.storyPages = map[int64]int{}
	for id, cs := range res.StoryComments {
		if len(cs) > 0 {
			fd.storyPages[id] = 1
		}
	}
	fd.hasMore = len(res.Comments) >= generalMoreThreshold ||
		fd.anyFullStory() ||
		(len(res.Stories) > 0 && fd.filters.Type == model.TypeStory)
	return nil
}

// SetFilters replaces the filters and searches again from the first page.
func (fd *Feed) SetFilters(ctx context.Context, f model.SearchFilters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	fd.filters = f
	return fd.Search(ctx)
}

// HasMore reports whether another LoadMore may find something.
func (fd *Feed) HasMore() bool { return fd.hasMore }

// LoadMore fetches the next page of whichever stream is active and reports whether anything was
// appended. General comments are paged only while no story has comments; otherwise every shown
// story holding at least a full page is advanced. A round that finds nothing turns HasMore off.
func (fd *Feed) LoadMore(ctx context.Context) (bool, error) {
	switch {
	case len(fd.result.Comments) > 0 && len(fd.result.StoryComments) == 0:
		more, err := fd.loader.LoadMoreGeneral(ctx, fd.pageURL, fd.filters, fd.generalPage)
		if err != nil {
			return false, err
		}
		if len(more) == 0 {
			fd.hasMore = false
			return false, nil
		}
		fd.result.Comments = append(fd.result.Comments, more...)
		fd.generalPage++
		return true, nil

	case len(fd.result.StoryComments) > 0 || len(fd.result.Stories) > 0:
		found := false
		for _, s := range fd.result.Stories {
			id := s.StoryID()
			held := fd.result.StoryComments[id]
			if len(held) < storyMoreThreshold {
				continue
			}
			page, ok := fd.storyPages[id]
			if !ok {
				page = 1
			}
			more, err := fd.loader.LoadMoreForStory(ctx, id, fd.filters, page)
			if err != nil {
				return found, err
			}
			if len(more) == 0 {
				continue
			}
			fd.result.StoryComments[id] = append(held, more...)
			fd.storyPages[id] = page + 1
			found = true
		}
		if !found {
			fd.hasMore = false
		}
		slog.Debug("feed: story comments loaded", "url", fd.pageURL, "found", found)
		return found, nil
	}
	fd.hasMore = false
	return false, nil
}

// Snapshot returns a copy of everything gathered so far.
func (fd *Feed) Snapshot() model.AggregateResult {
	out := model.AggregateResult{
		Stories:       append([]model.Story{}, fd.result.Stories...),
		Comments:      append([]model.Comment{}, fd.result.Comments...),
		StoryComments: make(map[int64][]model.Comment, len(fd.result.StoryComments)),
	}
	for id, cs := range fd.result.StoryComments {
		out.StoryComments[id] = append([]model.Comment{}, cs...)
	}
	return out
}

// Pages returns the next page index of the general stream and of each story stream.
func (fd *Feed) Pages() (general int, stories map[int64]int) {
	stories = make(map[int64]int, len(fd.storyPages))
	for id, p := range fd.storyPages {
		stories[id] = p
	}
	return fd.generalPage, stories
}

func (fd *Feed) anyFullStory() bool {
	for _, s := range fd.result.Stories {
		if len(fd.result.StoryComments[s.StoryID()]) >= storyMoreThreshold {
			return true
		}
	}
	return false
}
