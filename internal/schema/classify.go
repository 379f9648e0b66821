package schema

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Substrings of error texts that mark a statement as already applied.
var toleratedFragments = []string{
	"already exists",
	"duplicate",
	"relation",
}

// duplicate_* SQLSTATE codes.
var toleratedCodes = map[string]struct{}{
	"42P04": {}, // duplicate_database
	"42P05": {}, // duplicate_prepared_statement
	"42P06": {}, // duplicate_schema
	"42P07": {}, // duplicate_table
	"42701": {}, // duplicate_column
	"42710": {}, // duplicate_object
	"42712": {}, // duplicate_alias
	"42723": {}, // duplicate_function
	"23505": {}, // unique_violation
}

// SQLState extracts the SQLSTATE code from pgx and lib/pq errors.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// IsTolerated reports whether err means the statement's effect is already in
// place, so re-running the schema is harmless.
func IsTolerated(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := toleratedCodes[SQLState(err)]; ok {
		return true
	}

	message := strings.ToLower(err.Error())
	for _, fragment := range toleratedFragments {
		if strings.Contains(message, fragment) {
			return true
		}
	}

	return false
}
