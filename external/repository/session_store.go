package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/attendance/internal/repository"
)

type PostgresStore struct {
	conn *ConnectionManager
}

func NewPostgresStore(conn *ConnectionManager) repository.Store {
	return &PostgresStore{conn: conn}
}

const sessionColumns = `id, course_id, title, description, owner_id, created_at, end_time, status, location, code, late_after_sec`

func (s *PostgresStore) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	_, err = pool.Exec(ctx,
		`INSERT INTO sessions (id, course_id, title, description, owner_id, created_at, end_time, status, location, code, late_after_sec)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8, $9, $10)`,
		input.ID, input.CourseID, input.Title, input.Description, input.OwnerID,
		input.CreatedAt, input.EndTime, input.Location, input.Code,
		int64(input.LateAfter.Seconds()))
	if err != nil {
		return nil, mapError("create session", err)
	}
	endTime := input.EndTime
	return &repository.Session{
		ID:          input.ID,
		CourseID:    input.CourseID,
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		CreatedAt:   input.CreatedAt,
		EndTime:     &endTime,
		Status:      repository.SessionStatusActive,
		Location:    input.Location,
		Code:        input.Code,
		LateAfter:   input.LateAfter,
	}, nil
}

func (s *PostgresStore) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', end_time = $2 WHERE id = $1 AND status = 'active'`,
		sessionID, endedAt)
	if err != nil {
		return mapError("end session", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Already terminal counts as success; only a missing row is an error.
	return s.requireSessionExists(ctx, pool.QueryRow, sessionID)
}

func (s *PostgresStore) MarkSessionExpired(ctx context.Context, sessionID string) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed' WHERE id = $1 AND status = 'active'`,
		sessionID)
	if err != nil {
		return mapError("expire session", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return s.requireSessionExists(ctx, pool.QueryRow, sessionID)
}

func (s *PostgresStore) CancelSession(ctx context.Context, sessionID string) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx,
		`UPDATE sessions SET status = 'cancelled' WHERE id = $1 AND status = 'active'`,
		sessionID)
	if err != nil {
		return mapError("cancel session", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return s.requireSessionExists(ctx, pool.QueryRow, sessionID)
}

func (s *PostgresStore) UpdateSession(ctx context.Context, input repository.UpdateSessionInput) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx,
		`UPDATE sessions SET title = $2, description = $3, location = $4 WHERE id = $1`,
		input.ID, input.Title, input.Description, input.Location)
	if err != nil {
		return mapError("update session", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) GetSessionByID(ctx context.Context, sessionID string) (*repository.Session, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	row := pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, sessionID)
	return scanSession(row)
}

func (s *PostgresStore) GetSessionByCode(ctx context.Context, code string) (*repository.Session, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	row := pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE code = $1`, code)
	return scanSession(row)
}

func (s *PostgresStore) ListSessionsByCourse(ctx context.Context, courseID string) ([]repository.Session, error) {
	return s.listSessions(ctx, `course_id`, courseID)
}

func (s *PostgresStore) ListSessionsByOwner(ctx context.Context, ownerID string) ([]repository.Session, error) {
	return s.listSessions(ctx, `owner_id`, ownerID)
}

func (s *PostgresStore) listSessions(ctx context.Context, column, value string) ([]repository.Session, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	rows, err := pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE `+column+` = $1 ORDER BY created_at DESC`,
		value)
	if err != nil {
		return nil, mapError("list sessions", err)
	}
	defer rows.Close()

	var list []repository.Session
	for rows.Next() {
		sess, err := scanSessionValues(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list sessions", err)
	}
	return list, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return mapError("delete session", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}

type rowQuerier func(ctx context.Context, sql string, args ...any) pgx.Row

func (s *PostgresStore) requireSessionExists(ctx context.Context, queryRow rowQuerier, sessionID string) error {
	var exists bool
	if err := queryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return mapError("check session exists", err)
	}
	if !exists {
		return repository.ErrSessionNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	sess, err := scanSessionValues(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

func scanSessionValues(row pgx.Row) (*repository.Session, error) {
	var (
		sess         repository.Session
		endTime      *time.Time
		status       string
		lateAfterSec int64
	)
	err := row.Scan(&sess.ID, &sess.CourseID, &sess.Title, &sess.Description, &sess.OwnerID,
		&sess.CreatedAt, &endTime, &status, &sess.Location, &sess.Code, &lateAfterSec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, mapError("scan session", err)
	}
	parsed, err := repository.ParseSessionStatus(status)
	if err != nil {
		return nil, repository.NewStorageError("scan session", err)
	}
	sess.EndTime = endTime
	sess.Status = parsed
	sess.LateAfter = time.Duration(lateAfterSec) * time.Second
	return &sess, nil
}
