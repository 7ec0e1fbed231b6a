// Package api exposes the aggregator as a small JSON API, the backend a popup calls.
// It is stateless: clients pass the page of each stream they want next.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"hn-discuss/internal/hackernews"
	"hn-discuss/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
)

// Aggregator is the search surface the API serves.
type Aggregator interface {
	SearchAll(ctx context.Context, pageURL string, f model.SearchFilters) (model.AggregateResult, error)
	LoadMoreGeneral(ctx context.Context, pageURL string, f model.SearchFilters, page int) ([]model.Comment, error)
	LoadMoreForStory(ctx context.Context, storyID int64, f model.SearchFilters, page int) ([]model.Comment, error)
}

// Handler serves the JSON API.
type Handler struct {
	agg      Aggregator
	defaults model.SearchFilters
	policy   *bluemonday.Policy
}

func NewHandler(agg Aggregator, defaults model.SearchFilters) *Handler {
	return &Handler{agg: agg, defaults: defaults, policy: bluemonday.UGCPolicy()}
}

// Router builds the chi router with request logging and panic recovery.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/more/general", h.moreGeneral)
		r.Get("/more/story/{id}", h.moreStory)
	})
	return r
}

type moreResponse struct {
	Comments []model.Comment `json:"comments"`
	HasMore  bool            `json:"has_more"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	f, err := h.filters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.agg.SearchAll(r.Context(), r.URL.Query().Get("url"), f)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res.Comments = h.sanitize(res.Comments)
	for id, cs := range res.StoryComments {
		res.StoryComments[id] = h.sanitize(cs)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) moreGeneral(w http.ResponseWriter, r *http.Request) {
	f, err := h.filters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cs, err := h.agg.LoadMoreGeneral(r.Context(), r.URL.Query().Get("url"), f, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, moreResponse{Comments: h.sanitize(cs), HasMore: len(cs) > 0})
}

func (h *Handler) moreStory(w http.ResponseWriter, r *http.Request) {
	f, err := h.filters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid story id"))
		return
	}
	cs, err := h.agg.LoadMoreForStory(r.Context(), id, f, page)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, moreResponse{Comments: h.sanitize(cs), HasMore: len(cs) > 0})
}

// filters reads type/url_match/sort, falling back to the configured defaults per field.
func (h *Handler) filters(r *http.Request) (model.SearchFilters, error) {
	q := r.URL.Query()
	f := h.defaults
	if v := q.Get("type"); v != "" {
		f.Type = model.ContentType(v)
	}
	if v := q.Get("url_match"); v != "" {
		f.URLMatch = model.URLMatch(v)
	}
	if v := q.Get("sort"); v != "" {
		f.Sort = model.Sort(v)
	}
	return f, f.Validate()
}

func pageParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 0, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil || p < 0 {
		return 0, errors.New("invalid page")
	}
	return p, nil
}

func (h *Handler) sanitize(cs []model.Comment) []model.Comment {
	out := make([]model.Comment, len(cs))
	for i, c := range cs {
		c.Text = h.policy.Sanitize(c.Text)
		out[i] = c
	}
	return out
}

func statusFor(err error) int {
	if errors.Is(err, hackernews.ErrInvalidURL) || errors.Is(err, model.ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
