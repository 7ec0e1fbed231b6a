package hackernews

import (
	"errors"
	"testing"

	"hn-discuss/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		mode    model.URLMatch
		want    string
		wantErr bool
	}{
		{"full strips query and fragment", "https://www.example.com/post?utm=x#top", model.MatchFull, `"https://www.example.com/post"`, false},
		{"partial uses domain without www", "https://www.example.com/post?utm=x#top", model.MatchPartial, `"example.com" OR "https://www.example.com/post"`, false},
		{"fragment before query", "https://blog.example.org/a#b?c", model.MatchFull, `"https://blog.example.org/a"`, false},
		{"uppercase host lowered for domain", "https://WWW.Example.com/p", model.MatchPartial, `"example.com" OR "https://WWW.Example.com/p"`, false},
		{"inner www kept", "https://docs.www.io/", model.MatchPartial, `"docs.www.io" OR "https://docs.www.io/"`, false},
		{"relative url rejected", "/just/a/path", model.MatchFull, "", true},
		{"garbage rejected", "http://[::1", model.MatchPartial, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQuery(tt.url, tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNeedle(t *testing.T) {
	p, err := ParsePageURL("https://www.example.com/post?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/post", p.Needle(model.MatchFull))
	assert.Equal(t, "example.com", p.Needle(model.MatchPartial))
}

func TestEndpoint(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultByDateURL, c.Endpoint(model.SortDate))
	assert.Equal(t, DefaultByPointsURL, c.Endpoint(model.SortPoints))

	c = NewClient(Options{ByDateURL: "http://x/date/", ByPointsURL: "http://x/pts"})
	assert.Equal(t, "http://x/date", c.Endpoint(model.SortDate))
	assert.Equal(t, "http://x/pts", c.Endpoint(model.SortPoints))
}
