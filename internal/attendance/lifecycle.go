package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/attendance/internal/config"
	"github.com/campushub/attendance/internal/repository"
)

// LifecycleManager owns session creation, explicit closing and the lazy
// expiry policy: a session past its end time is moved to completed when it is
// read, never by a background sweep. A session that is never read after
// expiry simply stays active in storage until someone looks at it.
type LifecycleManager struct {
	store            repository.SessionStore
	defaultLateAfter time.Duration
}

type CreateSessionParams struct {
	CourseID    string
	Title       string
	Description string
	OwnerID     string
	Location    string
	Duration    time.Duration
	// LateAfter overrides the configured late threshold for this session.
	// Zero means use the default.
	LateAfter time.Duration
}

func NewLifecycleManager(cfg *config.Config, store repository.SessionStore) *LifecycleManager {
	return &LifecycleManager{
		store:            store,
		defaultLateAfter: time.Duration(cfg.LateAfterMin) * time.Minute,
	}
}

func (m *LifecycleManager) CreateSession(ctx context.Context, p CreateSessionParams) (*repository.Session, error) {
	if p.Duration <= 0 {
		return nil, fmt.Errorf("session duration must be positive, got %s", p.Duration)
	}
	lateAfter := p.LateAfter
	if lateAfter <= 0 {
		lateAfter = m.defaultLateAfter
	}
	code, err := NewSessionCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess, err := m.store.CreateSession(ctx, repository.CreateSessionInput{
		ID:          uuid.NewString(),
		CourseID:    p.CourseID,
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Location:    p.Location,
		Code:        code,
		CreatedAt:   now,
		EndTime:     now.Add(p.Duration),
		LateAfter:   lateAfter,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("session created",
		"session_id", sess.ID,
		"course_id", sess.CourseID,
		"owner_id", sess.OwnerID,
		"end_time", sess.EndTime,
		"code", sess.Code)
	return sess, nil
}

// GetSession fetches a session and applies lazy expiry: an active session
// whose end time is at or before now is persisted as completed before it is
// returned. Returns nil when the session does not exist.
func (m *LifecycleManager) GetSession(ctx context.Context, sessionID string, now time.Time) (*repository.Session, error) {
	sess, err := m.store.GetSessionByID(ctx, sessionID)
	if err != nil || sess == nil {
		return sess, err
	}
	return m.expireIfPast(ctx, sess, now)
}

// GetSessionByCode resolves a manually entered code with the same lazy
// expiry semantics as GetSession.
func (m *LifecycleManager) GetSessionByCode(ctx context.Context, code string, now time.Time) (*repository.Session, error) {
	sess, err := m.store.GetSessionByCode(ctx, code)
	if err != nil || sess == nil {
		return sess, err
	}
	return m.expireIfPast(ctx, sess, now)
}

func (m *LifecycleManager) expireIfPast(ctx context.Context, sess *repository.Session, now time.Time) (*repository.Session, error) {
	if sess.Status != repository.SessionStatusActive || sess.EndTime == nil || now.Before(*sess.EndTime) {
		return sess, nil
	}
	if err := m.store.MarkSessionExpired(ctx, sess.ID); err != nil {
		return nil, err
	}
	sess.Status = repository.SessionStatusCompleted
	slog.Info("session expired on read", "session_id", sess.ID, "end_time", sess.EndTime)
	return sess, nil
}

// CloseSession ends the session now. Closing an already-closed session
// succeeds without changing its recorded end time.
func (m *LifecycleManager) CloseSession(ctx context.Context, sessionID string, now time.Time) error {
	if err := m.store.EndSession(ctx, sessionID, now); err != nil {
		return err
	}
	slog.Info("session closed", "session_id", sessionID)
	return nil
}

func (m *LifecycleManager) CancelSession(ctx context.Context, sessionID string) error {
	if err := m.store.CancelSession(ctx, sessionID); err != nil {
		return err
	}
	slog.Info("session cancelled", "session_id", sessionID)
	return nil
}

// DeleteSession removes the session and all of its records.
func (m *LifecycleManager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	slog.Info("session deleted", "session_id", sessionID)
	return nil
}

func (m *LifecycleManager) ListByCourse(ctx context.Context, courseID string) ([]repository.Session, error) {
	return m.store.ListSessionsByCourse(ctx, courseID)
}

func (m *LifecycleManager) ListByOwner(ctx context.Context, ownerID string) ([]repository.Session, error) {
	return m.store.ListSessionsByOwner(ctx, ownerID)
}

func (m *LifecycleManager) UpdateSession(ctx context.Context, input repository.UpdateSessionInput) error {
	return m.store.UpdateSession(ctx, input)
}
