package repository

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// ParseSessionStatus rejects anything outside the closed set. A stored value
// that does not parse is data corruption, not a default.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case SessionStatusActive, SessionStatusCompleted, SessionStatusCancelled:
		return SessionStatus(s), nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

type RecordStatus string

const (
	RecordStatusPresent RecordStatus = "present"
	RecordStatusLate    RecordStatus = "late"
	RecordStatusAbsent  RecordStatus = "absent"
	RecordStatusLeave   RecordStatus = "leave"
)

func ParseRecordStatus(s string) (RecordStatus, error) {
	switch RecordStatus(s) {
	case RecordStatusPresent, RecordStatusLate, RecordStatusAbsent, RecordStatusLeave:
		return RecordStatus(s), nil
	}
	return "", fmt.Errorf("unknown record status %q", s)
}

// Session is one time-bounded check-in window tied to a course and owner.
type Session struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	EndTime     *time.Time
	Status      SessionStatus
	Location    string
	Code        string
	LateAfter   time.Duration
}

// Record is one participant's single check-in outcome against a session.
type Record struct {
	ID            string
	SessionID     string
	ParticipantID string
	Timestamp     time.Time
	Status        RecordStatus
}
