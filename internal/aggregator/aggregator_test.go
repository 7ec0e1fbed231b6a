package aggregator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hn-discuss/internal/hackernews"
	"hn-discuss/internal/hackernews/hntest"
	"hn-discuss/internal/model"
	"hn-discuss/internal/observe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher returns canned data and counts calls per primitive.
type fakeSearcher struct {
	stories       []model.Story
	exact         []model.Comment
	domain        []model.Comment
	storyComments map[int64][]model.Comment

	storyCalls, exactCalls, domainCalls atomic.Int32
	mu                                  sync.Mutex
	perStory                            []int64
	pages                               []int
	delay                               time.Duration
	inflight, maxInflight               atomic.Int32
}

func (f *fakeSearcher) SearchStories(_ context.Context, _ string, _ model.SearchFilters, _ int) ([]model.Story, error) {
	f.storyCalls.Add(1)
	return f.stories, nil
}

func (f *fakeSearcher) SearchComments(_ context.Context, _ string, _ model.SearchFilters, page, _ int) ([]model.Comment, error) {
	f.domainCalls.Add(1)
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	return f.domain, nil
}

func (f *fakeSearcher) SearchByExactURL(_ context.Context, _ string, _ model.SearchFilters, page, _ int) ([]model.Comment, error) {
	f.exactCalls.Add(1)
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	return f.exact, nil
}

func (f *fakeSearcher) CommentsForStory(_ context.Context, id int64, _ model.SearchFilters, _, _ int) []model.Comment {
	n := f.inflight.Add(1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.inflight.Add(-1)
	f.mu.Lock()
	f.perStory = append(f.perStory, id)
	f.mu.Unlock()
	return f.storyComments[id]
}

func story(id int64) model.Story {
	return model.Story{ObjectID: model.FlexID(id), Title: fmt.Sprintf("story %d", id), URL: "https://example.com/post"}
}

func comments(storyID int64, n int) []model.Comment {
	out := make([]model.Comment, n)
	for i := range out {
		out[i] = model.Comment{ObjectID: model.FlexID(storyID*1000 + int64(i)), StoryID: model.FlexID(storyID), Text: strings.Repeat("c", 60)}
	}
	return out
}

func filters(t model.ContentType) model.SearchFilters {
	f := model.DefaultFilters()
	f.Type = t
	return f
}

const pageURL = "https://example.com/post"

func TestSearchAllStoryTypeKeepsStoryComments(t *testing.T) {
	fs := &fakeSearcher{
		stories:       []model.Story{story(1), story(2), story(3), story(4), story(5)},
		storyComments: map[int64][]model.Comment{1: comments(1, 4), 3: comments(3, 2)},
		exact:         comments(9, 3),
	}
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeStory))
	require.NoError(t, err)

	assert.Empty(t, res.Comments)
	assert.Len(t, res.Stories, MaxStories)
	require.Len(t, res.StoryComments, 2)
	assert.Len(t, res.StoryComments[1], 4)
	assert.Len(t, res.StoryComments[3], 2)
	_, has2 := res.StoryComments[2]
	assert.False(t, has2, "stories without comments are left out of the mapping")
	assert.ElementsMatch(t, []int64{1, 2, 3}, fs.perStory, "only the first three stories are expanded")
	assert.Zero(t, fs.exactCalls.Load())
	assert.Zero(t, fs.domainCalls.Load())
}

func TestSearchAllCommentTypeSkipsStories(t *testing.T) {
	fs := &fakeSearcher{stories: []model.Story{story(1)}, exact: comments(9, 12)}
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeComment))
	require.NoError(t, err)
	assert.Zero(t, fs.storyCalls.Load())
	assert.Empty(t, res.Stories)
	assert.Len(t, res.Comments, MaxGeneralComments)
	assert.Empty(t, res.StoryComments)
	assert.NotNil(t, res.StoryComments)
}

func TestSearchAllExactHitSkipsDomainFallback(t *testing.T) {
	fs := &fakeSearcher{exact: comments(9, 1), domain: comments(8, 5)}
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, int32(1), fs.exactCalls.Load())
	assert.Zero(t, fs.domainCalls.Load())
	assert.Len(t, res.Comments, 1)
}

func TestSearchAllFallsBackToDomain(t *testing.T) {
	fs := &fakeSearcher{domain: comments(8, 5)}
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, int32(1), fs.exactCalls.Load())
	assert.Equal(t, int32(1), fs.domainCalls.Load())
	assert.Len(t, res.Comments, 5)
	assert.True(t, res.Stories != nil && len(res.Stories) == 0)
}

func TestSearchAllNoFallbackWhenStoryCommentsFound(t *testing.T) {
	fs := &fakeSearcher{
		stories:       []model.Story{story(1)},
		storyComments: map[int64][]model.Comment{1: comments(1, 1)},
		exact:         comments(9, 3),
	}
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeAll))
	require.NoError(t, err)
	assert.Zero(t, fs.exactCalls.Load())
	assert.Zero(t, fs.domainCalls.Load())
	assert.Empty(t, res.Comments)
	assert.Len(t, res.Stories, 1)
}

func TestSearchAllSkipsZeroIDStories(t *testing.T) {
	fs := &fakeSearcher{stories: []model.Story{{Title: "no id", URL: "https://example.com"}, story(2)}}
	_, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, fs.perStory)
}

func TestSearchAllFansOutConcurrently(t *testing.T) {
	// A single CPU must not serialize network-bound fetches.
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	fs := &fakeSearcher{
		stories:       []model.Story{story(1), story(2), story(3)},
		storyComments: map[int64][]model.Comment{1: comments(1, 1), 2: comments(2, 1), 3: comments(3, 1)},
		delay:         50 * time.Millisecond,
	}
	start := time.Now()
	res, err := New(fs).SearchAll(context.Background(), pageURL, filters(model.TypeAll))
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Len(t, res.StoryComments, 3, "all fetches are awaited")
	assert.Equal(t, int32(3), fs.maxInflight.Load())
	assert.Less(t, elapsed, 140*time.Millisecond)
}

func TestSearchAllRejectsBadInput(t *testing.T) {
	fs := &fakeSearcher{}
	_, err := New(fs).SearchAll(context.Background(), "nope", model.DefaultFilters())
	assert.True(t, errors.Is(err, hackernews.ErrInvalidURL))
	_, err = New(fs).SearchAll(context.Background(), pageURL, model.SearchFilters{Type: "x", URLMatch: model.MatchFull, Sort: model.SortDate})
	assert.True(t, errors.Is(err, model.ErrInvalidFilter))
	assert.Zero(t, fs.storyCalls.Load())
}

func TestLoadMoreGeneralUsesPage(t *testing.T) {
	fs := &fakeSearcher{domain: comments(8, 2)}
	got, err := New(fs).LoadMoreGeneral(context.Background(), pageURL, model.DefaultFilters(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []int{3, 3}, fs.pages)

	empty := &fakeSearcher{}
	got, err = New(empty).LoadMoreGeneral(context.Background(), pageURL, model.DefaultFilters(), 1)
	require.NoError(t, err, "an exhausted stream is not an error")
	assert.Empty(t, got)
}

// End to end against the fake upstream: 2 stories, 25 comments on the first.
func TestSearchAllAndLoadMoreForStoryEndToEnd(t *testing.T) {
	srv := hntest.NewServer()
	defer srv.Close()
	srv.SetStories(
		hntest.Story(101, "Example post", "https://example.com/post"),
		hntest.Story(102, "Example post again", "https://example.com/post"),
	)
	var hits []hntest.Hit
	for i := 0; i < 25; i++ {
		hits = append(hits, hntest.Comment(int64(5000+i), 101, i, strings.Repeat("w", 40)))
	}
	srv.SetStoryComments(101, hits...)

	client := hackernews.NewClient(hackernews.Options{
		ByDateURL: srv.ByDateURL(), ByPointsURL: srv.ByPointsURL(), Reporter: observe.Nop{},
	})
	agg := New(client)
	f := model.DefaultFilters()

	res, err := agg.SearchAll(context.Background(), "https://example.com/post", f)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Stories), MaxStories)
	assert.Len(t, res.Stories, 2)
	require.Contains(t, res.StoryComments, int64(101))
	assert.Len(t, res.StoryComments[101], 20)
	assert.NotContains(t, res.StoryComments, int64(102))

	more, err := agg.LoadMoreForStory(context.Background(), 101, f, 1)
	require.NoError(t, err)
	require.Len(t, more, 5)
	assert.Equal(t, model.FlexID(5020), more[0].ObjectID)

	more, err = agg.LoadMoreForStory(context.Background(), 101, f, 2)
	require.NoError(t, err)
	assert.Empty(t, more)
}

func TestLoadMoreForStoryRejectsBadFilters(t *testing.T) {
	fs := &fakeSearcher{storyComments: map[int64][]model.Comment{1: comments(1, 2)}}
	_, err := New(fs).LoadMoreForStory(context.Background(), 1, model.SearchFilters{}, 1)
	assert.True(t, errors.Is(err, model.ErrInvalidFilter))
	assert.Empty(t, fs.perStory, "no fetch with unset sort")

	got, err := New(fs).LoadMoreForStory(context.Background(), 1, model.DefaultFilters(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
