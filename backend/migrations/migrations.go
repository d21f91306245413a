// Package migrations holds the SQL schema and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

func setup() error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func Up(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// Down rolls back the most recent migration.
func Down(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Down(db, dir)
}

func Status(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Status(db, dir)
}
