package model

import (
	"fmt"
	"strings"
)

// ContentType selects which kinds of hits a search returns.
type ContentType string

const (
	TypeAll     ContentType = "all"
	TypeStory   ContentType = "story"
	TypeComment ContentType = "comment"
)

// URLMatch selects how relatedness to a page is judged.
type URLMatch string

const (
	MatchFull    URLMatch = "full"
	MatchPartial URLMatch = "partial"
)

// Sort selects the upstream ordering.
type Sort string

const (
	SortDate   Sort = "date"
	SortPoints Sort = "points"
)

// SearchFilters is the immutable filter configuration of one search.
type SearchFilters struct {
	Type     ContentType `json:"type" yaml:"type"`
	URLMatch URLMatch    `json:"url_match" yaml:"url_match"`
	Sort     Sort        `json:"sort" yaml:"sort"`
}

// DefaultFilters returns all content, partial match, newest first.
func DefaultFilters() SearchFilters {
	return SearchFilters{Type: TypeAll, URLMatch: MatchPartial, Sort: SortDate}
}

// WantsStories reports whether stories are searched and returned.
func (f SearchFilters) WantsStories() bool {
	return f.Type == TypeAll || f.Type == TypeStory
}

// WantsComments reports whether general comments are searched and returned.
func (f SearchFilters) WantsComments() bool {
	return f.Type == TypeAll || f.Type == TypeComment
}

// Validate checks every field against its enumeration.
func (f SearchFilters) Validate() error {
	switch f.Type {
	case TypeAll, TypeStory, TypeComment:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidFilter, f.Type)
	}
	switch f.URLMatch {
	case MatchFull, MatchPartial:
	default:
		return fmt.Errorf("%w: url match %q", ErrInvalidFilter, f.URLMatch)
	}
	switch f.Sort {
	case SortDate, SortPoints:
	default:
		return fmt.Errorf("%w: sort %q", ErrInvalidFilter, f.Sort)
	}
	return nil
}

// ParseFilters builds filters from loosely formatted strings; empty values take the defaults.
func ParseFilters(typ, urlMatch, sort string) (SearchFilters, error) {
	f := DefaultFilters()
	if v := strings.ToLower(strings.TrimSpace(typ)); v != "" {
		f.Type = ContentType(v)
	}
	if v := strings.ToLower(strings.TrimSpace(urlMatch)); v != "" {
		f.URLMatch = URLMatch(v)
	}
	if v := strings.ToLower(strings.TrimSpace(sort)); v != "" {
		f.Sort = Sort(v)
	}
	if err := f.Validate(); err != nil {
		return SearchFilters{}, err
	}
	return f, nil
}
