package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mealplan-service/internal/domain/entity"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// storeError maps a database/sql or sqlite error onto the domain sentinels
func storeError(action string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, entity.ErrNotFound)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case constraint(sqliteErr, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE"):
			// The only unique index writers can hit is the one-current-plan index.
			return fmt.Errorf("failed to %s: another plan is current: %w", action, entity.ErrInvariantViolation)
		case constraint(sqliteErr, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY"):
			return fmt.Errorf("failed to %s: %w", action, entity.ErrNotFound)
		}
	}

	return fmt.Errorf("failed to %s: %w: %w", action, entity.ErrTransientStore, err)
}

// constraint matches the extended result code, or the primary code plus message
// when extended codes are off
func constraint(err *msqlite.Error, extended int, kind string) bool {
	if err.Code() == extended {
		return true
	}
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), kind)
}

func nullDate(date string) any {
	if date == "" {
		return nil
	}
	return date
}

func notFound(what string, id fmt.Stringer, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storeError("read affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, entity.ErrNotFound)
	}
	return nil
}
