// Command mood-mixer runs the Mood Mixer web application.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-mixer/internal/auth"
	"github.com/justestif/go-spotify-mood-mixer/internal/config"
	"github.com/justestif/go-spotify-mood-mixer/internal/db"
	"github.com/justestif/go-spotify-mood-mixer/internal/logging"
	"github.com/justestif/go-spotify-mood-mixer/internal/recommend"
	"github.com/justestif/go-spotify-mood-mixer/internal/sentiment"
	"github.com/justestif/go-spotify-mood-mixer/internal/spotify"
	"github.com/justestif/go-spotify-mood-mixer/internal/web"
	webfs "github.com/justestif/go-spotify-mood-mixer/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	store, cleanup, err := openTokenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	creds, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret,
		auth.WithStore(store),
		auth.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		auth.WithLogger(log.WithField("component", "auth")),
	)
	if err != nil {
		return fmt.Errorf("creating catalog credentials: %w", err)
	}

	api := spotifyapi.New(
		creds.Client(&http.Client{Timeout: cfg.UpstreamTimeout}),
		spotifyapi.WithRetry(true),
	)
	catalog := spotify.New(api, spotify.WithMarket(cfg.Market))

	recommender := recommend.New(catalog, creds,
		recommend.WithLogger(log.WithField("component", "recommend")),
	)

	sentCfg := cfg.Sentiment()
	if err := sentCfg.Validate(); err != nil {
		return fmt.Errorf("sentiment config: %w", err)
	}
	classifier := sentiment.NewClient(sentCfg)

	server, err := web.NewServer(web.ServerConfig{
		Addr:           cfg.HTTPAddr,
		RequestTimeout: cfg.RequestTimeout,
		Sentiment:      classifier,
		Recommender:    recommender,
		Logger:         log.WithField("component", "web"),
		TemplatesFS:    webfs.Templates(),
		StaticFS:       webfs.Static(),
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// openTokenStore builds the configured catalog token store. The returned
// cleanup func is always non-nil.
func openTokenStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (auth.TokenStore, func(), error) {
	noop := func() {}

	switch cfg.TokenStore {
	case config.TokenStoreFile:
		if cfg.TokenFile != "" {
			return auth.NewFileTokenStore(cfg.TokenFile, cfg.SpotifyID), noop, nil
		}
		store, err := auth.DefaultFileTokenStore(cfg.SpotifyID)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("path", store.Path()).Info("Using file token store")
		return store, noop, nil

	case config.TokenStorePostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, noop, fmt.Errorf("preparing schema: %w", err)
		}
		log.Info("Using postgres token store")
		return auth.NewPGTokenStore(database.Tokens(), cfg.SpotifyID), database.Close, nil

	default:
		return &auth.MemoryTokenStore{}, noop, nil
	}
}
