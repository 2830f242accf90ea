package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/samirrijal/locationwizard/internal/adapters/postgres"
	"github.com/samirrijal/locationwizard/internal/pkg/config"
)

// migrations lists the schema files in apply order. Down runs them in
// reverse using the matching .down.sql file.
var migrations = []string{
	"001_lookups",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [migrations dir]")
	}
	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	_ = godotenv.Load()
	cfg, err := config.Load("locationwizard-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	files, err := plan(os.Args[1], dir)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		fmt.Printf("OK  %s\n", f)
	}

	log.Printf("%d migrations applied (%s)", len(files), os.Args[1])
}

// plan returns the files to execute for direction.
func plan(direction, dir string) ([]string, error) {
	files := make([]string, 0, len(migrations))
	switch direction {
	case "up":
		for _, m := range migrations {
			files = append(files, filepath.Join(dir, m+".sql"))
		}
	case "down":
		for i := len(migrations) - 1; i >= 0; i-- {
			files = append(files, filepath.Join(dir, migrations[i]+".down.sql"))
		}
	default:
		return nil, fmt.Errorf("unknown command: %s", direction)
	}
	return files, nil
}
