package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hn-discuss/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discussion() model.AggregateResult {
	return model.AggregateResult{
		Stories: []model.Story{{ObjectID: 5, Title: "Show HN: a thing", Points: 50, NumComments: 2, URL: "https://example.com"}},
		StoryComments: map[int64][]model.Comment{
			5: {{Author: "alice", Points: 4, Text: "Really <i>useful</i> tool, I use it daily for work."}},
		},
	}
}

func TestDigestInput(t *testing.T) {
	in := DigestInput(discussion())
	assert.Contains(t, in, "Story: Show HN: a thing (50 points, 2 comments)")
	assert.Contains(t, in, "- alice (4 pts): Really *useful* tool")
	assert.Equal(t, "", DigestInput(model.AggregateResult{}))
}

func TestNewOpenAIRequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenAI(Config{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAI(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestSummarizeDiscussion(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"  People like it.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(Config{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	out, err := c.SummarizeDiscussion(context.Background(), "https://example.com", discussion(), "")
	require.NoError(t, err)
	assert.Equal(t, "People like it.", out)
	assert.Equal(t, "test-model", gotBody["model"])

	out, err = c.SummarizeDiscussion(context.Background(), "https://example.com", model.AggregateResult{}, "")
	require.NoError(t, err)
	assert.Empty(t, out)
}
