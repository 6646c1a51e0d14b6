package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"starlings/config"
	"starlings/db"
	"starlings/gazetteer"
	"starlings/geocoder"
	"starlings/moderation"
	"starlings/posts"
	"starlings/resolver"
	"starlings/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the support map API",
		Description: `Starts the HTTP server backing the support map.

Serves the approved feed, city clusters, hybrid location search, new
submissions and a server-sent-events stream. Values from the optional
TOML configuration file are used where flags are left at their
defaults.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
				EnvVars: []string{"STARLINGS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Value:   "localhost",
				Usage:   "The hostname the server runs under",
				EnvVars: []string{"STARLINGS_HOSTNAME"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"STARLINGS_PORT"},
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Aliases: []string{"b"},
				Usage:   "URL of the moderation backend",
				EnvVars: []string{"STARLINGS_BACKEND_URL"},
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "cache.db",
				Usage:   "SQLite snapshot database file location, empty disables persistence",
				EnvVars: []string{"STARLINGS_DATABASE"},
			},
		},
		Action: func(ctx *cli.Context) error {

			fmt.Println("Starting starlings...")

			cfg := &config.TomlConfig{}
			if path := ctx.String("config"); path != "" {
				loaded, err := config.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = loaded
			}

			hostname := cfg.Server.Hostname
			if ctx.IsSet("hostname") || hostname == "" {
				hostname = ctx.String("hostname")
			}
			port := cfg.Server.Port
			if ctx.IsSet("port") || port == 0 {
				port = ctx.Int("port")
			}
			backendURL := cfg.Backend.URL
			if ctx.IsSet("backend-url") || backendURL == "" {
				backendURL = ctx.String("backend-url")
			}
			database := cfg.Cache.Database
			if ctx.IsSet("database") || database == "" {
				database = ctx.String("database")
			}

			extra := make([]gazetteer.Place, 0, len(cfg.Places))
			for _, place := range cfg.Places {
				extra = append(extra, gazetteer.Place{
					Name:       place.Name,
					Prov:       place.Prov,
					Population: place.Population,
					Lat:        place.Lat,
					Lng:        place.Lng,
				})
			}

			geo := geocoder.NewClient(geocoder.Config{
				BaseURL:      cfg.Geocoder.URL,
				CountryCodes: cfg.Geocoder.CountryCodes,
				MinInterval:  time.Duration(cfg.Geocoder.MinIntervalMs) * time.Millisecond,
				Timeout:      time.Duration(cfg.Geocoder.TimeoutSeconds) * time.Second,
				Contact:      cfg.Geocoder.ContactComments,
			})

			backend := moderation.NewClient(backendURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

			var snapshots posts.Snapshotter
			var store *db.Store
			if database != "" {
				if err := db.Migrate(database); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				var err error
				store, err = db.NewStore(database)
				if err != nil {
					log.WithFields(log.Fields{
						"database": database,
						"error":    err,
					}).Warn("Snapshot store unavailable, continuing without persistence")
				} else {
					snapshots = store
				}
			}

			coordinator := posts.NewCoordinator(backend, snapshots,
				time.Duration(cfg.Cache.TTLMinutes)*time.Minute)

			bc := server.NewBroadcaster()
			app := server.Server(&server.ServerConfig{
				Hostname:    hostname,
				Coordinator: coordinator,
				Resolver:    resolver.New(gazetteer.New(extra...), geo),
				Backend:     backend,
				Broadcaster: bc,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			var wg sync.WaitGroup

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
				bc.Shutdown()
				if store != nil {
					store.Close()
				}
				wg.Add(-1)
			}()

			go func() {
				fmt.Println("Starting server...")
				if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
					log.Panic(err)
				}
			}()

			wg.Add(1)
			wg.Wait()

			fmt.Println("Done!")

			return nil
		},
	}
}
