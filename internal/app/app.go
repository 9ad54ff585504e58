package app

import (
	"fmt"
	"os"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/config"
	"github.com/notepid/campus_connect/internal/db"
	"github.com/notepid/campus_connect/internal/group"
	"github.com/notepid/campus_connect/internal/message"
	"github.com/notepid/campus_connect/internal/session"
	"github.com/notepid/campus_connect/internal/user"
)

// App wires configuration, local storage, the API client and the repos
// the screens use.
type App struct {
	ConfigPath string
	Config     *config.Config
	DB         *db.DB

	API     *api.Client
	Session *session.Store
	Auth    *session.Service

	Users    *user.Repo
	Groups   *group.Repo
	Messages *message.Repo
}

// New loads configuration from configPath and opens the local database.
func New(configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	database, err := db.Open(cfg.Paths.Database)
	if err != nil {
		return nil, nil, err
	}

	a := Wire(cfg, database)
	a.ConfigPath = configPath

	cleanup := func() {
		_ = database.Close()
	}

	return a, cleanup, nil
}

// Wire builds an App from an already loaded config. database may be nil, in
// which case the session is not persisted.
func Wire(cfg *config.Config, database *db.DB) *App {
	store := session.NewStore(database, cfg.API.BaseURL)
	client := api.New(cfg.API.BaseURL, store, cfg.API.Timeout)
	users := user.NewRepo(client)

	return &App{
		Config:   cfg,
		DB:       database,
		API:      client,
		Session:  store,
		Auth:     session.NewService(store, client, users),
		Users:    users,
		Groups:   group.NewRepo(client),
		Messages: message.NewRepo(client),
	}
}

// NewPoller returns an inbox poller using the configured interval.
func (a *App) NewPoller() *message.Poller {
	return message.NewPoller(a.Config.Messages.PollInterval, a.Messages.Inbox)
}
