package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"starlings/gazetteer"
	"starlings/geocoder"
	"starlings/resolver"
)

// searchCmd represents the search command
func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for a city from the command line",
		ArgsUsage: "QUERY",
		Description: `Runs the same hybrid location search the share form uses and
prints each result-set revision as a JSON object on a single line:
first the instant gazetteer results, then the merged list including
the remote geocoder. Use a tool like jq to process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "geocoder-url",
				Usage:   "URL of the remote geocoder",
				EnvVars: []string{"STARLINGS_GEOCODER_URL"},
			},
			&cli.BoolFlag{
				Name:  "local-only",
				Usage: "Skip the remote geocoder",
			},
		},
		Action: func(ctx *cli.Context) error {
			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			query := ctx.Args().First()
			if query == "" {
				return errors.New("please provide a search query")
			}

			var remote resolver.RemoteSearcher
			if !ctx.Bool("local-only") {
				remote = geocoder.NewClient(geocoder.Config{
					BaseURL: ctx.String("geocoder-url"),
					// Be polite when run from scripts
					MinInterval: time.Second,
				})
			}

			r := resolver.New(gazetteer.New(), remote)
			for update := range r.Resolve(ctx.Context, query) {
				printStdout(update)
			}

			return nil
		},
	}
}

func printStdout(v interface{}) {
	// Print as single JSON string on a single line
	encoded, err := json.Marshal(v)
	if err == nil {
		fmt.Println(string(encoded))
	}
}
