package booking

import (
	"time"

	"zenclass.org/internal/auth"
)

// Teacher leads scheduled sessions. Read-only from this package's point of
// view; the catalog is maintained through seeds.
type Teacher struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is a bookable class. Members holds each user at most once, in
// join order. Two sessions are the same entity iff their IDs match. Version
// backs the conditional save in the store: a save only succeeds against the
// version the session was loaded with.
type Session struct {
	ID          int64
	Name        string
	Date        time.Time
	Description string
	TeacherID   int64
	Members     []auth.User
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether the user is in the member list, compared by ID.
func (s *Session) HasMember(userID int64) bool {
	return s.memberIndex(userID) >= 0
}

func (s *Session) memberIndex(userID int64) int {
	for i, m := range s.Members {
		if m.ID == userID {
			return i
		}
	}
	return -1
}
