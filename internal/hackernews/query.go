package hackernews

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"hn-discuss/internal/model"
)

// ErrInvalidURL is returned when a page URL cannot be parsed as an absolute URL.
var ErrInvalidURL = errors.New("invalid page url")

// PageURL holds the two forms of a page URL used for matching.
type PageURL struct {
	Domain string // hostname without a leading "www."
	Clean  string // the URL without query string and fragment
}

// ParsePageURL derives the domain and clean forms of rawURL.
func ParsePageURL(rawURL string) (PageURL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageURL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return PageURL{}, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}
	clean, _, _ := strings.Cut(rawURL, "?")
	clean, _, _ = strings.Cut(clean, "#")
	return PageURL{
		Domain: strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		Clean:  clean,
	}, nil
}

// Query builds the search string for the given match mode.
func (p PageURL) Query(mode model.URLMatch) string {
	if mode == model.MatchFull {
		return quote(p.Clean)
	}
	return quote(p.Domain) + " OR " + quote(p.Clean)
}

// Needle is the substring a hit must contain to be considered related under mode.
func (p PageURL) Needle(mode model.URLMatch) string {
	if mode == model.MatchFull {
		return p.Clean
	}
	return p.Domain
}

// BuildQuery turns a page URL into an upstream search string.
func BuildQuery(rawURL string, mode model.URLMatch) (string, error) {
	p, err := ParsePageURL(rawURL)
	if err != nil {
		return "", err
	}
	return p.Query(mode), nil
}

func quote(s string) string {
	return `"` + s + `"`
}
