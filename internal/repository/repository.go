package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	OwnerID     string
	Location    string
	Code        string
	CreatedAt   time.Time
	EndTime     time.Time
	LateAfter   time.Duration
}

type UpdateSessionInput struct {
	ID          string
	Title       string
	Description string
	Location    string
}

type InsertRecordInput struct {
	SessionID     string
	ParticipantID string
	Timestamp     time.Time
	Status        RecordStatus
}

type SessionStore interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	// EndSession moves an active session to completed and stamps the close
	// instant. Ending an already-terminal session is a no-op that reports
	// success; a missing session is ErrSessionNotFound.
	EndSession(ctx context.Context, sessionID string, endedAt time.Time) error
	// MarkSessionExpired moves an active session to completed without
	// touching its scheduled end time.
	MarkSessionExpired(ctx context.Context, sessionID string) error
	CancelSession(ctx context.Context, sessionID string) error
	UpdateSession(ctx context.Context, input UpdateSessionInput) error
	GetSessionByID(ctx context.Context, sessionID string) (*Session, error)
	GetSessionByCode(ctx context.Context, code string) (*Session, error)
	ListSessionsByCourse(ctx context.Context, courseID string) ([]Session, error)
	ListSessionsByOwner(ctx context.Context, ownerID string) ([]Session, error)
	// DeleteSession removes the session and cascades to its records.
	DeleteSession(ctx context.Context, sessionID string) error
}

type RecordStore interface {
	// InsertRecord returns ErrDuplicateRecord when a record for the same
	// (session, participant) pair already exists. The storage layer enforces
	// this with a unique index so concurrent inserts cannot both succeed.
	InsertRecord(ctx context.Context, input InsertRecordInput) (*Record, error)
	RecordExists(ctx context.Context, sessionID, participantID string) (bool, error)
	GetRecord(ctx context.Context, sessionID, participantID string) (*Record, error)
	ListRecordsBySession(ctx context.Context, sessionID string) ([]Record, error)
	ListRecordsByParticipant(ctx context.Context, participantID string) ([]Record, error)
	UpdateRecordStatus(ctx context.Context, recordID string, status RecordStatus) error
	DeleteRecordsBySession(ctx context.Context, sessionID string) error
}

type Store interface {
	SessionStore
	RecordStore
}
