package cmd

import (
	"fmt"
	"time"

	"hn-discuss/internal/aggregator"
	"hn-discuss/internal/config"
	"hn-discuss/internal/hackernews"
	"hn-discuss/internal/model"
	"hn-discuss/internal/observe"
	"hn-discuss/internal/redisclient"
	"hn-discuss/internal/render"
	"hn-discuss/internal/storage"
)

// services bundles what the search commands need; Close releases the Redis connection if any.
type services struct {
	agg     *aggregator.Aggregator
	filters model.SearchFilters
	format  render.Format
	close   func() error
}

func (s *services) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func newServices(cfg config.Config) (*services, error) {
	filters, err := model.ParseFilters(cfg.Defaults.Type, cfg.Defaults.URLMatch, cfg.Defaults.Sort)
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(cfg.App.Output)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(cfg.Search.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid search.timeout: %w", err)
	}

	s := &services{filters: filters, format: format}
	reporters := observe.Multi{observe.LogReporter{}}
	if cfg.Redis.Addr != "" {
		rdb := redisclient.New(cfg.Redis)
		store := storage.NewRedisStore(rdb, cfg.Redis.FailureStream, cfg.Redis.FailureStreamMaxLen)
		failures := storage.NewFailureReporter(store, 64)
		reporters = append(reporters, failures)
		s.close = func() error {
			failures.Close()
			return rdb.Close()
		}
	}

	client := hackernews.NewClient(hackernews.Options{
		ByDateURL:         cfg.Search.ByDateURL,
		ByPointsURL:       cfg.Search.ByPointsURL,
		Timeout:           timeout,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		UserAgent:         cfg.Search.UserAgent,
		Reporter:          reporters,
	})
	s.agg = aggregator.New(client)
	return s, nil
}
