package attendance

import "errors"

var (
	// ErrSessionClosed covers both a terminal session and a check-in at or
	// after the session's end time.
	ErrSessionClosed = errors.New("check-in window is closed")
	// ErrParticipantNotFound means the directory has no such participant.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrInvalidParticipant means the participant exists but lacks the role
	// or course membership the session requires.
	ErrInvalidParticipant = errors.New("participant not eligible for this session")
	// ErrMalformedToken is returned when a scanned token does not carry the
	// expected scheme.
	ErrMalformedToken = errors.New("malformed check-in token")
)
