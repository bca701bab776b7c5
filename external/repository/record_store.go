package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/attendance/internal/repository"
)

const recordColumns = `id, session_id, participant_id, checked_at, status`

func (s *PostgresStore) InsertRecord(ctx context.Context, input repository.InsertRecordInput) (*repository.Record, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	var id string
	err = pool.QueryRow(ctx,
		`INSERT INTO records (session_id, participant_id, checked_at, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		input.SessionID, input.ParticipantID, input.Timestamp, string(input.Status)).Scan(&id)
	if err != nil {
		return nil, mapError("insert record", err)
	}
	return &repository.Record{
		ID:            id,
		SessionID:     input.SessionID,
		ParticipantID: input.ParticipantID,
		Timestamp:     input.Timestamp,
		Status:        input.Status,
	}, nil
}

func (s *PostgresStore) RecordExists(ctx context.Context, sessionID, participantID string) (bool, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer s.conn.Release()

	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE session_id = $1 AND participant_id = $2)`,
		sessionID, participantID).Scan(&exists)
	if err != nil {
		return false, mapError("check record exists", err)
	}
	return exists, nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, sessionID, participantID string) (*repository.Record, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	row := pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE session_id = $1 AND participant_id = $2`,
		sessionID, participantID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) ListRecordsBySession(ctx context.Context, sessionID string) ([]repository.Record, error) {
	return s.listRecords(ctx, `session_id`, sessionID)
}

func (s *PostgresStore) ListRecordsByParticipant(ctx context.Context, participantID string) ([]repository.Record, error) {
	return s.listRecords(ctx, `participant_id`, participantID)
}

func (s *PostgresStore) listRecords(ctx context.Context, column, value string) ([]repository.Record, error) {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.conn.Release()

	rows, err := pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE `+column+` = $1 ORDER BY checked_at ASC`,
		value)
	if err != nil {
		return nil, mapError("list records", err)
	}
	defer rows.Close()

	var list []repository.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list records", err)
	}
	return list, nil
}

func (s *PostgresStore) UpdateRecordStatus(ctx context.Context, recordID string, status repository.RecordStatus) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	tag, err := pool.Exec(ctx,
		`UPDATE records SET status = $2 WHERE id = $1`,
		recordID, string(status))
	if err != nil {
		return mapError("update record status", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteRecordsBySession(ctx context.Context, sessionID string) error {
	pool, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.conn.Release()

	if _, err := pool.Exec(ctx, `DELETE FROM records WHERE session_id = $1`, sessionID); err != nil {
		return mapError("delete records", err)
	}
	return nil
}

func scanRecord(row pgx.Row) (*repository.Record, error) {
	var (
		rec    repository.Record
		status string
	)
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.ParticipantID, &rec.Timestamp, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, mapError("scan record", err)
	}
	parsed, err := repository.ParseRecordStatus(status)
	if err != nil {
		return nil, repository.NewStorageError("scan record", err)
	}
	rec.Status = parsed
	return &rec, nil
}
