package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/campushub/attendance/internal/directory"
	"github.com/campushub/attendance/internal/repository"
)

// Coordinator runs the check-in registration protocol: load the session with
// lazy expiry, reject closed windows and duplicates, validate the participant
// against the directory, classify on-time versus late, and insert the record.
//
// The duplicate check and the insert are not atomic on their own; the unique
// index on (session_id, participant_id) in the record store is what closes
// that race. The early RecordExists call only gives the common duplicate a
// cheap answer before touching the directory.
type Coordinator struct {
	lifecycle *LifecycleManager
	records   repository.RecordStore
	directory directory.Directory
}

func NewCoordinator(lifecycle *LifecycleManager, records repository.RecordStore, dir directory.Directory) *Coordinator {
	return &Coordinator{
		lifecycle: lifecycle,
		records:   records,
		directory: dir,
	}
}

// RegisterCheckIn registers one participant against one active session and
// returns the created record. now is the registration instant supplied by
// the caller; a check-in at exactly createdAt+LateAfter is still on time.
func (c *Coordinator) RegisterCheckIn(ctx context.Context, sessionID, participantID string, now time.Time) (*repository.Record, error) {
	sess, err := c.lifecycle.GetSession(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, repository.ErrSessionNotFound
	}
	return c.checkIn(ctx, sess, participantID, now)
}

func (c *Coordinator) checkIn(ctx context.Context, sess *repository.Session, participantID string, now time.Time) (*repository.Record, error) {
	if sess.Status != repository.SessionStatusActive {
		return nil, ErrSessionClosed
	}
	if sess.EndTime != nil && !now.Before(*sess.EndTime) {
		return nil, ErrSessionClosed
	}

	exists, err := c.records.RecordExists(ctx, sess.ID, participantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateRecord
	}

	if err := c.validateParticipant(ctx, participantID, sess.CourseID); err != nil {
		return nil, err
	}

	status := repository.RecordStatusPresent
	if now.After(sess.CreatedAt.Add(sess.LateAfter)) {
		status = repository.RecordStatusLate
	}

	rec, err := c.records.InsertRecord(ctx, repository.InsertRecordInput{
		SessionID:     sess.ID,
		ParticipantID: participantID,
		Timestamp:     now,
		Status:        status,
	})
	if err != nil {
		// A concurrent registration can win between the existence check and
		// the insert; the unique index reports the loser as a duplicate.
		return nil, err
	}
	slog.Info("check-in registered",
		"session_id", sess.ID,
		"participant_id", participantID,
		"status", rec.Status)
	return rec, nil
}

// RegisterCheckInByToken resolves a scanned token to a session id and
// registers against it.
func (c *Coordinator) RegisterCheckInByToken(ctx context.Context, token, participantID string, now time.Time) (*repository.Record, error) {
	sessionID, err := ParseToken(token)
	if err != nil {
		return nil, err
	}
	return c.RegisterCheckIn(ctx, sessionID, participantID, now)
}

// RegisterCheckInByCode is the manual entry fallback: a typed code resolves
// to the same registration path as a scanned token.
func (c *Coordinator) RegisterCheckInByCode(ctx context.Context, code, participantID string, now time.Time) (*repository.Record, error) {
	sess, err := c.lifecycle.GetSessionByCode(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, repository.ErrSessionNotFound
	}
	return c.checkIn(ctx, sess, participantID, now)
}

// MarkManualStatus lets the owner synthesize or reclassify a record outside
// the registration protocol, e.g. marking a participant who never scanned as
// absent or on leave. It creates the record if none exists and overwrites
// the status otherwise. The session must exist but need not be active.
func (c *Coordinator) MarkManualStatus(ctx context.Context, sessionID, participantID string, status repository.RecordStatus, now time.Time) (*repository.Record, error) {
	sess, err := c.lifecycle.GetSession(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, repository.ErrSessionNotFound
	}
	if err := c.validateParticipant(ctx, participantID, sess.CourseID); err != nil {
		return nil, err
	}

	rec, err := c.records.GetRecord(ctx, sessionID, participantID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if err := c.records.UpdateRecordStatus(ctx, rec.ID, status); err != nil {
			return nil, err
		}
		rec.Status = status
		slog.Info("record status overridden",
			"session_id", sessionID,
			"participant_id", participantID,
			"status", status)
		return rec, nil
	}

	// Record timestamps never precede the session start.
	ts := now
	if ts.Before(sess.CreatedAt) {
		ts = sess.CreatedAt
	}
	rec, err = c.records.InsertRecord(ctx, repository.InsertRecordInput{
		SessionID:     sessionID,
		ParticipantID: participantID,
		Timestamp:     ts,
		Status:        status,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("record synthesized",
		"session_id", sessionID,
		"participant_id", participantID,
		"status", status)
	return rec, nil
}

// OverrideStatus reclassifies an existing record by id.
func (c *Coordinator) OverrideStatus(ctx context.Context, recordID string, status repository.RecordStatus) error {
	return c.records.UpdateRecordStatus(ctx, recordID, status)
}

func (c *Coordinator) ListSessionRecords(ctx context.Context, sessionID string) ([]repository.Record, error) {
	return c.records.ListRecordsBySession(ctx, sessionID)
}

func (c *Coordinator) ListParticipantRecords(ctx context.Context, participantID string) ([]repository.Record, error) {
	return c.records.ListRecordsByParticipant(ctx, participantID)
}

func (c *Coordinator) validateParticipant(ctx context.Context, participantID, courseID string) error {
	p, err := c.directory.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrParticipantNotFound
	}
	if p.Role != directory.RoleStudent {
		return ErrInvalidParticipant
	}
	member, err := c.directory.IsCourseMember(ctx, participantID, courseID)
	if err != nil {
		return err
	}
	if !member {
		return ErrInvalidParticipant
	}
	return nil
}
