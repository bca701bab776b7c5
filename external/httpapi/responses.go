package httpapi

import (
	"time"

	"github.com/campushub/attendance/internal/attendance"
	"github.com/campushub/attendance/internal/repository"
)

type sessionJSON struct {
	ID               string     `json:"id"`
	CourseID         string     `json:"courseId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	OwnerID          string     `json:"ownerId"`
	CreatedAt        time.Time  `json:"createdAt"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	Status           string     `json:"status"`
	Location         string     `json:"location"`
	Code             string     `json:"code"`
	Token            string     `json:"token"`
	LateAfterMinutes int        `json:"lateAfterMinutes"`
}

func sessionResponse(sess *repository.Session) sessionJSON {
	return sessionJSON{
		ID:               sess.ID,
		CourseID:         sess.CourseID,
		Title:            sess.Title,
		Description:      sess.Description,
		OwnerID:          sess.OwnerID,
		CreatedAt:        sess.CreatedAt,
		EndTime:          sess.EndTime,
		Status:           string(sess.Status),
		Location:         sess.Location,
		Code:             sess.Code,
		Token:            attendance.BuildToken(sess.ID),
		LateAfterMinutes: int(sess.LateAfter.Minutes()),
	}
}

func sessionListResponse(sessions []repository.Session) []sessionJSON {
	out := make([]sessionJSON, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionResponse(&sessions[i]))
	}
	return out
}

type recordJSON struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
}

func recordResponse(rec *repository.Record) recordJSON {
	return recordJSON{
		ID:            rec.ID,
		SessionID:     rec.SessionID,
		ParticipantID: rec.ParticipantID,
		Timestamp:     rec.Timestamp,
		Status:        string(rec.Status),
	}
}

func recordListResponse(records []repository.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for i := range records {
		out = append(out, recordResponse(&records[i]))
	}
	return out
}
