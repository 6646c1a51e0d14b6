package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "starlings",
		Usage: "An anonymous peer-support map for Canadian cities",
		Description: `Serves the Starlings support map: approved "what helped me"
		notes fetched from the moderation backend, grouped into city
		clusters, plus hybrid city search backed by a built-in gazetteer
		and a remote geocoder.

		Flags can generally be set via environment variables, e.g.:

		--database => STARLINGS_DATABASE=cache.db
		--port => STARLINGS_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			searchCmd(),
			submitCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
