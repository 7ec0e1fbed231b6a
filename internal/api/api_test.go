package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hn-discuss/internal/aggregator"
	"hn-discuss/internal/hackernews"
	"hn-discuss/internal/hackernews/hntest"
	"hn-discuss/internal/model"
	"hn-discuss/internal/observe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) (*httptest.Server, *hntest.Server) {
	t.Helper()
	up := hntest.NewServer()
	t.Cleanup(up.Close)
	client := hackernews.NewClient(hackernews.Options{ByDateURL: up.ByDateURL(), ByPointsURL: up.ByPointsURL(), Reporter: observe.Nop{}})
	h := NewHandler(aggregator.New(client), model.DefaultFilters())
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, up
}

func get(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestSearchEndpointSanitizes(t *testing.T) {
	srv, up := newAPI(t)
	up.SetStories(hntest.Story(7, "Example", "https://example.com/post"))
	up.SetStoryComments(7, hntest.Comment(1, 7, 2, `Nice post <script>alert(1)</script><a href="https://x.io">link</a> and more words`))

	var res model.AggregateResult
	status := get(t, srv, "/api/search?url="+url.QueryEscape("https://example.com/post"), &res)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, res.Stories, 1)
	require.Len(t, res.StoryComments[7], 1)
	text := res.StoryComments[7][0].Text
	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, `href="https://x.io"`)
}

func TestSearchEndpointBadInput(t *testing.T) {
	srv, up := newAPI(t)
	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/search?url=nope", &body))
	assert.Contains(t, body["error"], "invalid page url")
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/search?url=https%3A%2F%2Fa.io&sort=hot", &body))
	assert.Empty(t, up.Requests())
}

func TestMoreStoryEndpoint(t *testing.T) {
	srv, up := newAPI(t)
	var hits []hntest.Hit
	for i := 0; i < 25; i++ {
		hits = append(hits, hntest.Comment(int64(i+1), 9, i, strings.Repeat("z", 35)))
	}
	up.SetStoryComments(9, hits...)

	var more struct {
		Comments []model.Comment `json:"comments"`
		HasMore  bool            `json:"has_more"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/more/story/9?page=1", &more))
	assert.Len(t, more.Comments, 5)
	assert.True(t, more.HasMore)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/more/story/9?page=2", &more))
	assert.Empty(t, more.Comments)
	assert.False(t, more.HasMore)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/more/story/abc", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/more/story/9?page=-1", nil))
}

func TestMoreGeneralEndpoint(t *testing.T) {
	srv, up := newAPI(t)
	up.SetComments(hntest.Comment(1, 3, 0, "a comment that links https://example.com/post and is long enough"))

	var more struct {
		Comments []model.Comment `json:"comments"`
		HasMore  bool            `json:"has_more"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/more/general?page=0&url="+url.QueryEscape("https://example.com/post"), &more))
	assert.Len(t, more.Comments, 1)
	assert.True(t, more.HasMore)

	reqs := up.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, 10, reqs[0].HitsPerPage, "exact pass first")
}

func TestHealthz(t *testing.T) {
	srv, _ := newAPI(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

var _ Aggregator = (*aggregator.Aggregator)(nil)
