// Package hntest provides an in-process fake of the search API for tests.
package hntest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Hit is one raw upstream record; fields may be missing on purpose.
type Hit map[string]any

// Request is what the fake saw for one call.
type Request struct {
	Path           string
	Query          string
	Tags           string
	NumericFilters string
	Page           int
	HitsPerPage    int
}

// Server serves stories, general comments and per-story comments, paginated by page/hitsPerPage.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	stories       []Hit
	comments      []Hit
	storyComments map[int64][]Hit
	status        int
	requests      []Request
}

// NewServer starts a fake upstream. Close it when done.
func NewServer() *Server {
	s := &Server{storyComments: map[int64][]Hit{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// ByDateURL and ByPointsURL are the two endpoints to configure a client with.
func (s *Server) ByDateURL() string   { return s.URL + "/api/v1/search_by_date" }
func (s *Server) ByPointsURL() string { return s.URL + "/api/v1/search" }

func (s *Server) SetStories(h ...Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = h
}

func (s *Server) SetComments(h ...Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = h
}

func (s *Server) SetStoryComments(storyID int64, h ...Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storyComments[storyID] = h
}

// FailWith makes every request answer with status; 0 restores normal answers.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := Request{
		Path:           r.URL.Path,
		Query:          q.Get("query"),
		Tags:           q.Get("tags"),
		NumericFilters: q.Get("numericFilters"),
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.HitsPerPage, _ = strconv.Atoi(q.Get("hitsPerPage"))

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status := s.status
	var all []Hit
	switch {
	case req.Tags == "story":
		all = s.stories
	case strings.HasPrefix(req.NumericFilters, "story_id="):
		id, _ := strconv.ParseInt(strings.TrimPrefix(req.NumericFilters, "story_id="), 10, 64)
		all = s.storyComments[id]
	default:
		all = s.comments
	}
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	hpp := req.HitsPerPage
	if hpp <= 0 {
		hpp = 20
	}
	start := req.Page * hpp
	if start > len(all) {
		start = len(all)
	}
	end := start + hpp
	if end > len(all) {
		end = len(all)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"hits":             append([]Hit{}, all[start:end]...),
		"nbHits":           len(all),
		"processingTimeMS": 1,
	})
}

// Story builds a complete story hit; objectID is sent as a string like upstream does.
func Story(id int64, title, url string) Hit {
	return Hit{
		"objectID":     strconv.FormatInt(id, 10),
		"author":       "pg",
		"points":       10,
		"title":        title,
		"url":          url,
		"num_comments": 3,
		"created_at":   "2024-05-01T12:00:00.000Z",
		"_tags":        []string{"story", "author_pg", "story_" + strconv.FormatInt(id, 10)},
	}
}

// Comment builds a comment hit belonging to storyID.
func Comment(id, storyID int64, points int, text string) Hit {
	return Hit{
		"objectID":     strconv.FormatInt(id, 10),
		"author":       "dang",
		"points":       points,
		"story_title":  "Some story",
		"story_url":    "",
		"story_id":     storyID,
		"comment_text": text,
		"created_at":   "2024-05-01T13:00:00.000Z",
	}
}
