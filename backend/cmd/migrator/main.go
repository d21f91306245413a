// Command migrator applies or rolls back the database schema.
//
//	go run ./backend/cmd/migrator -cmd up
package main

import (
	"database/sql"
	"flag"
	"log"

	"scholarly/backend/config"
	"scholarly/backend/migrations"

	_ "github.com/lib/pq"
)

func main() {
	command := flag.String("cmd", "up", "migration command: up, down or status")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	switch *command {
	case "up":
		err = migrations.Up(db)
	case "down":
		err = migrations.Down(db)
	case "status":
		err = migrations.Status(db)
	default:
		log.Fatalf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", *command, err)
	}
	log.Printf("migrate %s: done", *command)
}
