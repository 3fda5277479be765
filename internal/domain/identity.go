package domain

// Roles recognized by the core. Authentication lives outside this
// module; callers inject an already verified identity.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Identity is the caller identity injected by the transport layer.
type Identity struct {
	ID   string
	Role string
}

// CanCreateQuizzes reports whether the identity holds a role allowed
// to submit and rebuild quizzes.
func (i Identity) CanCreateQuizzes() bool {
	return i.Role == RoleTeacher || i.Role == RoleAdmin
}

// Privileged reports whether the identity may view quizzes it does not
// own regardless of their status.
func (i Identity) Privileged() bool {
	return i.Role == RoleTeacher || i.Role == RoleAdmin
}
