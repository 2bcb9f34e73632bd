package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/democlub/wcivf/app/importer"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := importer.Initialize(ctx)
	if err != nil {
		panic(err)
	}

	// Immediate pass before cron
	app.SyncOnce(ctx)

	// Start cron scheduler
	app.StartCron()

	// Setup server
	app.SetupServer()

	// Start server
	app.Start(ctx)
}
