package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kenoanalyzer/cmd"
	"kenoanalyzer/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancellation stops the aggregator and every simulation stream
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling analysis...")
		cancel()
	}()

	run := cmd.Run
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
		case "report":
			run = cmd.RenderLatest
		default:
			log.Fatalf("unknown command: %s (usage: kenoanalyzer [run|report|migrate])", os.Args[1])
		}
	}

	if err := run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: kenoanalyzer migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
