package persistence

import (
	"errors"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate is the row lock used by the *ForUpdate finders. Drivers without
// row locks (sqlite) drop the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// SQLSTATEs PostgreSQL raises when concurrent transactions collide
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// translate maps driver errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeAlreadyExists, "Record already exists")
	default:
		return translateConflict(err)
	}
}

// translateConflict turns a deadlock or serialization failure into a retryable
// CONCURRENCY_CONFLICT. Other errors are returned as they are.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return shared.Errorf(shared.CodeConcurrencyConflict,
			"Another update touched the same records (%s), retry the request", pgErr.Code)
	default:
		return err
	}
}

func optimisticLockFailed(what string) error {
	return shared.Errorf(shared.CodeOptimisticLock, "%s was modified by another transaction", what)
}
