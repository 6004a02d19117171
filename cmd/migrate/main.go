// migrate applies the service schema to the configured database. Intended
// for local development and scratch environments; hosted deployments own
// their schema through separate migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
)

func main() {
	var timeout = flag.Duration("timeout", 30*time.Second, "Migration timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	color.Cyan("Applying schema (%s)...", cfg.Database.Provider)
	if err := storage.Migrate(ctx, cfg.Database); err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}
	color.Green("Schema up to date")
}
