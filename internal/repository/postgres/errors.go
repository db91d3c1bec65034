package postgres

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// rollback is deferred after BeginTxx; it is a no-op once the transaction committed.
func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
