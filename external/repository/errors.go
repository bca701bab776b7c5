package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campushub/attendance/internal/repository"
)

const recordUniqueIndex = "idx_records_session_participant"

// mapError translates PostgreSQL errors into the engine's taxonomy. The
// unique index on (session_id, participant_id) is what makes concurrent
// duplicate registrations lose deterministically, so its violation maps to
// ErrDuplicateRecord rather than a storage failure.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == recordUniqueIndex {
				return repository.ErrDuplicateRecord
			}
		case pgerrcode.ForeignKeyViolation:
			// Inserting a record for a session that was deleted underneath us.
			return repository.ErrSessionNotFound
		}
	}
	return repository.NewStorageError(op, err)
}
