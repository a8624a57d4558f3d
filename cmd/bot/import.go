package main

import (
	"errors"
	"log"
	"os"

	"github.com/openfieldlab/hashbot/internal/db"
	"github.com/openfieldlab/hashbot/internal/record"
)

// importCSVIfNeeded copies rows from an existing CSV data file into a fresh
// sqlite sink, so switching a deployment to sqlite keeps the rows already
// collected. It runs only when the sqlite table is empty.
func importCSVIfNeeded(csvPath string, sq *db.SQLiteLogger) error {
	n, err := sq.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // already migrated
	}
	if _, err := os.Stat(csvPath); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	rows, err := record.NewCSVLogger(csvPath).List()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	log.Printf("first run with sqlite sink, importing %d rows from %s...", len(rows), csvPath)
	for _, r := range rows {
		if err := sq.Append(r); err != nil {
			return err
		}
	}
	log.Printf("import complete")
	return nil
}
