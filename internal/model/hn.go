package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilter is returned when a filter value is not one of its enumerated values.
var ErrInvalidFilter = errors.New("invalid filter")

const itemURL = "https://news.ycombinator.com/item?id="

// FlexID is a numeric identifier that upstream sends either as a JSON number or as a numeric string.
type FlexID int64

func (id *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("model: id %q: %w", s, err)
	}
	*id = FlexID(n)
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(id))
}

// Story is a submitted link or text post.
type Story struct {
	ObjectID    FlexID   `json:"objectID" yaml:"object_id"`
	ID          FlexID   `json:"id,omitempty" yaml:"id,omitempty"` // fallback when objectID is absent
	Author      string   `json:"author" yaml:"author"`
	Points      int      `json:"points" yaml:"points"`
	Title       string   `json:"title" yaml:"title"`
	URL         string   `json:"url" yaml:"url"`
	NumComments int      `json:"num_comments" yaml:"num_comments"`
	CreatedAt   string   `json:"created_at" yaml:"created_at"`
	Tags        []string `json:"_tags,omitempty" yaml:"tags,omitempty"`
}

// StoryID returns the primary identifier, falling back to ID.
func (s Story) StoryID() int64 {
	if s.ObjectID != 0 {
		return int64(s.ObjectID)
	}
	return int64(s.ID)
}

// DiscussionURL is the permalink of the story on the source site.
func (s Story) DiscussionURL() string {
	return itemURL + strconv.FormatInt(s.StoryID(), 10)
}

// TargetURL is the external link, or the permalink for text posts.
func (s Story) TargetURL() string {
	if strings.TrimSpace(s.URL) != "" {
		return s.URL
	}
	return s.DiscussionURL()
}

// Comment is a single comment hit. Text is HTML-bearing.
type Comment struct {
	ObjectID   FlexID `json:"objectID" yaml:"object_id"`
	Author     string `json:"author" yaml:"author"`
	Points     int    `json:"points" yaml:"points"`
	StoryTitle string `json:"story_title" yaml:"story_title"`
	StoryURL   string `json:"story_url" yaml:"story_url"`
	StoryID    FlexID `json:"story_id" yaml:"story_id"`
	Text       string `json:"comment_text" yaml:"comment_text"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

// DiscussionURL is the permalink of the story the comment belongs to.
func (c Comment) DiscussionURL() string {
	return itemURL + strconv.FormatInt(int64(c.StoryID), 10)
}

// AggregateResult is the shaped output of one full search.
type AggregateResult struct {
	Stories       []Story             `json:"stories" yaml:"stories"`
	Comments      []Comment           `json:"comments" yaml:"comments"`
	StoryComments map[int64][]Comment `json:"story_comments" yaml:"story_comments"`
}

// Empty reports whether nothing was found.
func (r AggregateResult) Empty() bool {
	return len(r.Stories) == 0 && len(r.Comments) == 0 && len(r.StoryComments) == 0
}
