package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"zenclass.org/internal/auth"
)

// SessionStore persists sessions together with their member lists.
// Save writes the whole aggregate conditionally: it fails with
// ErrVersionConflict when the stored version no longer matches the loaded
// one, and bumps s.Version on success.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id int64) (*Session, error)
	FindAll(ctx context.Context) ([]*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id int64) error
}

// TeacherStore exposes the read-only teacher catalog.
type TeacherStore interface {
	FindByID(ctx context.Context, id int64) (*Teacher, error)
	List(ctx context.Context) ([]*Teacher, error)
}

// Service carries session CRUD and the participation state machine.
type Service struct {
	sessions SessionStore
	users    auth.UserStore
	teachers TeacherStore
	now      func() time.Time
}

// saveAttempts bounds the load/check/save retry loop under concurrent
// membership changes on the same session.
const saveAttempts = 3

func NewService(sessions SessionStore, users auth.UserStore, teachers TeacherStore) *Service {
	return &Service{sessions: sessions, users: users, teachers: teachers, now: time.Now}
}

// Create stores a new session.
func (s *Service) Create(ctx context.Context, session *Session) (*Session, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	if _, err := s.teachers.FindByID(ctx, session.TeacherID); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Update overwrites the mutable fields of an existing session. Membership is
// not touched here; it only changes through Participate/NoLongerParticipate.
func (s *Service) Update(ctx context.Context, id int64, in *Session) (*Session, error) {
	if err := validateSession(in); err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Name = strings.TrimSpace(in.Name)
	session.Date = in.Date
	session.Description = in.Description
	session.TeacherID = in.TeacherID
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes a session and its memberships.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.sessions.Delete(ctx, id)
}

// FindAll lists every session.
func (s *Service) FindAll(ctx context.Context) ([]*Session, error) {
	return s.sessions.FindAll(ctx)
}

// GetByID returns one session.
func (s *Service) GetByID(ctx context.Context, id int64) (*Session, error) {
	return s.sessions.FindByID(ctx, id)
}

// Teachers lists the teacher catalog.
func (s *Service) Teachers(ctx context.Context) ([]*Teacher, error) {
	return s.teachers.List(ctx)
}

// Teacher returns one teacher.
func (s *Service) Teacher(ctx context.Context, id int64) (*Teacher, error) {
	return s.teachers.FindByID(ctx, id)
}

// Participate adds the user to the session's member list. The session is
// checked before the user; a duplicate join fails with ErrAlreadyMember and
// leaves the list untouched. The whole load/check/save sequence is retried
// on version conflicts.
func (s *Service) Participate(ctx context.Context, sessionID, userID int64) error {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		session, err := s.sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if session.HasMember(user.ID) {
			return ErrAlreadyMember
		}
		session.Members = append(session.Members, *user)
		if err := s.sessions.Save(ctx, session); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

// NoLongerParticipate removes the user from the session's member list. Only
// membership matters: no separate user-existence check is performed.
func (s *Service) NoLongerParticipate(ctx context.Context, sessionID, userID int64) error {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		session, err := s.sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		idx := session.memberIndex(userID)
		if idx < 0 {
			return ErrNotAMember
		}
		session.Members = append(session.Members[:idx], session.Members[idx+1:]...)
		if err := s.sessions.Save(ctx, session); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

func validateSession(session *Session) error {
	if session == nil {
		return ErrInvalidInput
	}
	if strings.TrimSpace(session.Name) == "" {
		return ErrInvalidInput
	}
	if session.Date.IsZero() {
		return ErrInvalidInput
	}
	if session.TeacherID <= 0 {
		return ErrInvalidInput
	}
	return nil
}
