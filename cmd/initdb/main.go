// Command initdb provisions the project database schema by replaying a SQL
// script statement by statement. Statements whose objects already exist are
// counted as executed, so the command can be run repeatedly.
//
// The exit status is 1 when the database is unreachable, the script cannot
// be read, or any statement failed for another reason.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/lmkadmin/internal/app"
	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
)

func reportSummary(summary models.SchemaSummary) {
	logger.Log.Infof("Database setup complete! Executed: %d/%d", summary.Executed, summary.Total)
	if summary.Tolerated > 0 {
		logger.Log.Infof("Already present: %d", summary.Tolerated)
	}
	if summary.Failed > 0 {
		logger.Log.Errorf("Failed: %d", summary.Failed)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New()
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	defer application.Close()

	return checkSummary(application.InitSchema(ctx))
}

// checkSummary reports the outcome of a run and turns failed statements into an error.
func checkSummary(summary models.SchemaSummary, err error) error {
	if summary.Total > 0 {
		reportSummary(summary)
	}
	if err != nil {
		return err
	}

	if !summary.Succeeded() {
		return fmt.Errorf("%d of %d statements failed", summary.Failed, summary.Total)
	}

	return nil
}

func main() {
	if err := logger.Init("info"); err != nil {
		fmt.Println("Logger init error:", err)
	}

	if err := run(); err != nil {
		logger.Log.Fatalln("Database setup failed:", err)
	}
}
