package directory

import "context"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type Participant struct {
	ID   string
	Name string
	Role Role
}

// Directory is the identity collaborator the check-in engine consumes. It
// answers only two questions: does this participant exist (and with what
// role), and are they a member of a given course.
type Directory interface {
	GetParticipant(ctx context.Context, participantID string) (*Participant, error)
	IsCourseMember(ctx context.Context, participantID, courseID string) (bool, error)
}
