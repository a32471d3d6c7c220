// Package bootstrap wires the session store, the authenticated API client and the billing service from
// configuration. Both the console server and the command line client start from here.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jrsteele09/billing-admin/apiclient"
	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/billing"
	"github.com/jrsteele09/billing-admin/internal/config"
	"github.com/jrsteele09/billing-admin/sessions"
	"github.com/jrsteele09/billing-admin/sessions/filerepo"
	"github.com/jrsteele09/billing-admin/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/billing-admin/sessions/repofakes"
	"github.com/jrsteele09/billing-admin/token/refresh"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App holds the wired components
type App struct {
	Store   *sessions.Store
	API     *apiclient.Client
	Billing *billing.Service
	Checks  map[string]func(context.Context) error

	closers []func() error
}

// Open builds the component graph and hydrates the session. A failed hydration is logged and leaves the
// console signed out rather than failing startup.
func Open(ctx context.Context, cfg config.Config, navigator apiclient.Navigator) (*App, error) {
	app := &App{Checks: make(map[string]func(context.Context) error)}

	repo, err := app.openRepo(cfg)
	if err != nil {
		return nil, err
	}

	authClient := auth.NewClient(cfg.GetAPIBaseURL())
	app.Store = sessions.NewStore(repo, authClient)
	if err := app.Store.Hydrate(ctx); err != nil {
		log.Err(err).Msg("Could not restore the saved session")
	}

	manager := refresh.NewManager(authClient, app.Store, cfg)
	app.API = apiclient.New(cfg.GetAPIBaseURL(), app.Store, manager, navigator, apiclient.WithTimeout(cfg.GetRequestTimeout()))
	app.Billing = billing.NewService(app.API)
	return app, nil
}

func (a *App) openRepo(cfg config.SessionConfig) (sessions.Repo, error) {
	switch store := cfg.GetSessionStore(); store {
	case config.SessionStoreMemory:
		log.Warn().Msg("Session is kept in memory and is lost on restart")
		return fakesessionrepo.NewFakeSessionRepo(), nil
	case config.SessionStoreFile:
		log.Info().Str("path", cfg.GetSessionFile()).Msg("Session is kept in a local file")
		return filerepo.New(cfg.GetSessionFile(), cfg.GetSessionPassphrase()), nil
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		repo := redisrepo.New(client, cfg.GetRedisPrefix())
		a.Checks["redis"] = repo.Ping
		a.closers = append(a.closers, client.Close)
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("Session is kept in Redis")
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", store)
	}
}

// Close releases connections opened by Open
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
