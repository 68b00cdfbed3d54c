package main

import (
	"golang.org/x/time/rate"

	"github.com/fedora-infra/quaystats/internal/store"
	"github.com/fedora-infra/quaystats/pkg/quay"
)

// newQuayClient builds a Quay API client from config. Fails when no token is
// configured.
func newQuayClient() (quay.Client, error) {
	token, err := cfg.RequireToken()
	if err != nil {
		return nil, err
	}

	opts := []quay.Option{
		quay.WithBaseURL(cfg.Quay.BaseURL),
		quay.WithPageSize(cfg.Quay.PageSize),
	}
	if rps := cfg.Quay.RequestsPerSecond; rps > 0 {
		opts = append(opts, quay.WithLimiter(rate.NewLimiter(rate.Limit(rps), 1)))
	}

	return quay.NewClient(token, opts...), nil
}

// initStore opens the fetch-run history database.
func initStore() (store.Store, error) {
	path := cfg.History.Path
	if path == "" {
		path = "quaystats.db"
	}
	return store.NewSQLite(path)
}
