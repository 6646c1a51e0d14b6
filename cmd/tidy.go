package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"starlings/db"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the snapshot database",
		Description: `Tidy up the snapshot database by removing stale entries.

A snapshot only matters until the next successful backend fetch, so
anything older than the maximum age is safe to drop.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "cache.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"STARLINGS_DATABASE"},
			},
			&cli.IntFlag{
				Name:    "max-age-hours",
				Value:   24,
				Usage:   "Remove snapshots older than this many hours",
				EnvVars: []string{"STARLINGS_TIDY_MAX_AGE_HOURS"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			fmt.Println("Database configured: ", database)
			return db.Tidy(database, time.Duration(ctx.Int("max-age-hours"))*time.Hour)
		},
	}
}
