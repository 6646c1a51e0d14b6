package db

import (
	"database/sql"
	"time"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes snapshots that have gone stale beyond any useful TTL.
func Tidy(database string, maxAge time.Duration) error {
	db, err := connection(database)
	if err != nil {
		return err
	}
	defer db.Close()

	return tidy(db, maxAge)
}

func tidy(db *sql.DB, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	deleteSnaps := sb.NewDeleteBuilder()
	query, args := deleteSnaps.DeleteFrom("post_cache").
		Where(deleteSnaps.LessEqualThan("fetched_at", cutoff)).
		BuildWithFlavor(sb.SQLite)

	log.WithFields(log.Fields{
		"sql":  query,
		"args": args,
	}).Info("Tidying database")

	_, err := db.Exec(query, args...)
	if err != nil {
		return err
	}

	return nil
}
