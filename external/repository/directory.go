package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/attendance/internal/directory"
	"github.com/campushub/attendance/internal/repository"
)

// PostgresDirectory answers participant identity and course-membership
// questions from the same database the stores use, through the same shared
// connection manager.
type PostgresDirectory struct {
	conn *ConnectionManager
}

func NewPostgresDirectory(conn *ConnectionManager) directory.Directory {
	return &PostgresDirectory{conn: conn}
}

func (d *PostgresDirectory) GetParticipant(ctx context.Context, participantID string) (*directory.Participant, error) {
	pool, err := d.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer d.conn.Release()

	var p directory.Participant
	var role string
	err = pool.QueryRow(ctx,
		`SELECT id, name, role FROM participants WHERE id = $1`,
		participantID).Scan(&p.ID, &p.Name, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, repository.NewStorageError("get participant", err)
	}
	p.Role = directory.Role(role)
	return &p, nil
}

func (d *PostgresDirectory) IsCourseMember(ctx context.Context, participantID, courseID string) (bool, error) {
	pool, err := d.conn.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer d.conn.Release()

	var member bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course_members WHERE participant_id = $1 AND course_id = $2)`,
		participantID, courseID).Scan(&member)
	if err != nil {
		return false, repository.NewStorageError("check course membership", err)
	}
	return member, nil
}
