package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('active', 'completed', 'cancelled'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE record_status AS ENUM ('present', 'late', 'absent', 'leave'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		course_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		status session_status NOT NULL DEFAULT 'active',
		location TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL UNIQUE,
		late_after_sec BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_course ON sessions (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions (owner_id)`,
	`CREATE TABLE IF NOT EXISTS records (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL,
		checked_at TIMESTAMPTZ NOT NULL,
		status record_status NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_records_session_participant ON records (session_id, participant_id)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_members (
		course_id TEXT NOT NULL,
		participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
		PRIMARY KEY (course_id, participant_id)
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
