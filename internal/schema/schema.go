// Package schema replays a SQL script statement by statement against the
// project database, treating "already exists" failures as success so the
// script can be run again on a provisioned database.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
)

// DefaultScriptName names the embedded script in logs.
const DefaultScriptName = "init-supabase.sql"

//go:embed init-supabase.sql
var defaultScript string

type executor interface {
	ExecInTransaction(ctx context.Context, statement string) error
}

// Load reads the script at path, or the embedded schema when path is empty.
func Load(path string) (string, error) {
	if path == "" {
		return defaultScript, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read the SQL file: %w", err)
	}

	return string(content), nil
}

// Initializer executes statements one at a time, each in its own transaction.
type Initializer struct {
	db executor
}

func NewInitializer(db executor) *Initializer {
	return &Initializer{db: db}
}

func preview(statement string) string {
	const limit = 60
	if utf8.RuneCountInString(statement) <= limit {
		return statement
	}

	return string([]rune(statement)[:limit]) + "..."
}

// Run executes every statement and never stops on a failed one. The returned
// error is non-nil only when ctx was cancelled; the summary then covers the
// statements attempted so far.
func (in *Initializer) Run(ctx context.Context, statements []string) (models.SchemaSummary, error) {
	summary := models.SchemaSummary{
		Total:   len(statements),
		Results: make([]models.StatementResult, 0, len(statements)),
	}
	if len(statements) == 0 {
		logger.Log.Warnln("The SQL script contains no statements")
		return summary, nil
	}

	logger.Log.Infof("Found %d SQL statements to execute", len(statements))

	for i, statement := range statements {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		position := fmt.Sprintf("[%d/%d]", i+1, len(statements))
		result := models.StatementResult{Index: i + 1}

		err := in.db.ExecInTransaction(ctx, statement)
		switch {
		case err == nil:
			result.Outcome = models.StatementExecuted
			summary.Executed++
			logger.Log.Infoln(position, "Executed successfully")
		case IsTolerated(err):
			result.Outcome = models.StatementTolerated
			result.Err = err
			summary.Executed++
			summary.Tolerated++
			logger.Log.Warnln(position, "Already exists or skipped", "sqlstate", SQLState(err))
			logger.Log.Debugln(position, "tolerated error:", err)
		default:
			result.Outcome = models.StatementFailed
			result.Err = err
			summary.Failed++
			logger.Log.Errorw(position+" Failed", "statement", preview(statement), "error", err)
		}

		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}
