package main

import (
	"context"
	"log/slog"

	"github.com/codeGROOVE-dev/sleuth/pkg/avatar"
	"github.com/codeGROOVE-dev/sleuth/pkg/config"
	"github.com/codeGROOVE-dev/sleuth/pkg/csvarchive"
	"github.com/codeGROOVE-dev/sleuth/pkg/enrich"
	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
	"github.com/codeGROOVE-dev/sleuth/pkg/localsearch"
	"github.com/codeGROOVE-dev/sleuth/pkg/server"
	"github.com/codeGROOVE-dev/sleuth/pkg/sleuth"
	"github.com/codeGROOVE-dev/sleuth/pkg/sqlstore"
	"github.com/codeGROOVE-dev/sleuth/pkg/websearch"
)

// app holds the components built from one configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	cache  *httpcache.Cache
	store  *sqlstore.Store
	csv    *csvarchive.Archive
	sleuth *sleuth.Sleuth
}

func withApp(ctx context.Context, g *globalFlags, fn func(context.Context, *app) error) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// withStore opens only the SQLite store.
func withStore(ctx context.Context, g *globalFlags, fn func(context.Context, *sqlstore.Store) error) error {
	logger := newLogger(g.debug)
	cfg, err := config.Load(g.config)
	if err != nil {
		return err
	}
	st, err := sqlstore.Open(ctx, cfg.Store.SQLitePath, sqlstore.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	return fn(ctx, st)
}

func newApp(ctx context.Context, g *globalFlags) (*app, error) {
	logger := newLogger(g.debug)
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	clientOpts := []httpcache.Option{httpcache.WithLogger(logger)}
	if !cfg.Cache.Disabled {
		if cfg.Cache.Dir != "" {
			a.cache, err = httpcache.NewWithPath(cfg.Cache.TTL, cfg.Cache.Dir)
		} else {
			a.cache, err = httpcache.New(cfg.Cache.TTL)
		}
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			logger.Debug("HTTP cache initialized", "ttl", cfg.Cache.TTL.String())
			clientOpts = append(clientOpts, httpcache.WithCache(a.cache))
		}
	}
	client := httpcache.NewClient(clientOpts...)

	a.store, err = sqlstore.Open(ctx, cfg.Store.SQLitePath, sqlstore.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.csv = csvarchive.New(cfg.Store.CSVDir, csvarchive.WithLogger(logger))
	if cfg.Store.WatchCSV {
		if err := a.csv.Watch(ctx); err != nil {
			logger.Warn("csv archive not watched", "dir", cfg.Store.CSVDir, "error", err)
		}
	}
	local := localsearch.New(
		localsearch.WithLogger(logger),
		localsearch.WithSource(a.store.People(), localsearch.ProfileTier),
		localsearch.WithSource(a.store.Documents(), localsearch.DocumentTier),
		localsearch.WithSource(a.csv, localsearch.ProfileTier),
	)

	webOpts := []websearch.Option{websearch.WithClient(client), websearch.WithLogger(logger)}
	opts := []sleuth.Option{
		sleuth.WithLogger(logger),
		sleuth.WithLocal(local),
		sleuth.WithHistory(a.store),
		sleuth.WithWebCount(cfg.Search.Count),
		sleuth.WithEnrichTimeout(cfg.Enrich.Timeout),
	}
	switch cfg.Search.Provider {
	case config.SearchBrave:
		if cfg.Search.BraveKey == "" {
			logger.Warn("no Brave API key; web search disabled")
			break
		}
		b := websearch.NewBrave(cfg.Search.BraveKey, webOpts...)
		opts = append(opts, sleuth.WithWeb(b), sleuth.WithImages(b))
	default:
		if cfg.Search.SerperKey == "" {
			logger.Warn("no Serper API key; web search disabled")
			break
		}
		s := websearch.NewSerper(cfg.Search.SerperKey, webOpts...)
		opts = append(opts, sleuth.WithWeb(s), sleuth.WithImages(s))
	}

	switch cfg.EnrichProvider() {
	case config.EnrichGroq:
		opts = append(opts, sleuth.WithEnricher(enrich.NewGroq(cfg.Enrich.GroqKey,
			enrich.WithGroqModel(cfg.Enrich.Model),
			enrich.WithGroqLogger(logger))))
	case config.EnrichOllama:
		opts = append(opts, sleuth.WithEnricher(enrich.NewOllama(cfg.Enrich.OllamaURL, cfg.Enrich.Model, logger)))
	}

	if cfg.Images.Dedupe {
		hopts := []avatar.Option{avatar.WithLogger(logger)}
		if a.cache != nil {
			hopts = append(hopts, avatar.WithCache(a.cache))
		}
		opts = append(opts, sleuth.WithImageDedupe(avatar.New(hopts...)))
	}

	a.sleuth = sleuth.New(opts...)
	logger.Debug("sleuth ready",
		"search", cfg.Search.Provider,
		"enrich", cfg.EnrichProvider(),
		"csv_files", len(a.csv.Files()))
	return a, nil
}

func (a *app) server() *server.Server {
	return server.New(a.sleuth, server.WithLogger(a.logger), server.WithStore(a.store))
}

// Close releases the store, watcher and cache.
func (a *app) Close() {
	if a.csv != nil {
		if err := a.csv.Close(); err != nil {
			a.logger.Warn("failed to close csv watcher", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close cache", "error", err)
		}
	}
}
