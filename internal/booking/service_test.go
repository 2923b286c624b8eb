package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"zenclass.org/internal/auth"
)

type fakeSessionStore struct {
	nextID   int64
	sessions map[int64]*Session

	// conflictsLeft makes the next N saves fail with ErrVersionConflict.
	conflictsLeft int
	saveCalls     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{nextID: 1, sessions: make(map[int64]*Session)}
}

func cloneSession(s *Session) *Session {
	clone := *s
	clone.Members = append([]auth.User(nil), s.Members...)
	return &clone
}

func (f *fakeSessionStore) Create(_ context.Context, s *Session) error {
	s.ID = f.nextID
	f.nextID++
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	f.sessions[s.ID] = cloneSession(s)
	return nil
}

func (f *fakeSessionStore) FindByID(_ context.Context, id int64) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (f *fakeSessionStore) FindAll(_ context.Context) ([]*Session, error) {
	out := make([]*Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, cloneSession(s))
	}
	return out, nil
}

func (f *fakeSessionStore) Save(_ context.Context, s *Session) error {
	f.saveCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ErrVersionConflict
	}
	stored, ok := f.sessions[s.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.Version != s.Version {
		return ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	f.sessions[s.ID] = cloneSession(s)
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakeTeacherStore struct {
	teachers map[int64]*Teacher
}

func (f *fakeTeacherStore) FindByID(_ context.Context, id int64) (*Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, ErrTeacherNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTeacherStore) List(_ context.Context) ([]*Teacher, error) {
	out := make([]*Teacher, 0, len(f.teachers))
	for _, t := range f.teachers {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

type fakeUserStore struct {
	users map[int64]*auth.User
}

func (f *fakeUserStore) Create(_ context.Context, u *auth.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeUserStore) Delete(_ context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

type fixture struct {
	svc      *Service
	sessions *fakeSessionStore
	users    *fakeUserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions := newFakeSessionStore()
	users := &fakeUserStore{users: map[int64]*auth.User{
		2: {ID: 2, Email: "a@test.com", FirstName: "Jane", LastName: "Smith"},
	}}
	teachers := &fakeTeacherStore{teachers: map[int64]*Teacher{
		1: {ID: 1, FirstName: "Margot", LastName: "Delahaye"},
	}}
	return &fixture{
		svc:      NewService(sessions, users, teachers),
		sessions: sessions,
		users:    users,
	}
}

func (f *fixture) createSession(t *testing.T) *Session {
	t.Helper()
	session, err := f.svc.Create(context.Background(), &Session{
		Name:        "Morning Flow",
		Date:        time.Now().Add(24 * time.Hour),
		Description: "Beginner friendly",
		TeacherID:   1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return session
}

func TestParticipateAddsMemberOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	if err := f.svc.Participate(ctx, session.ID, 2); err != nil {
		t.Fatalf("Participate: %v", err)
	}

	stored, err := f.svc.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Members) != 1 || stored.Members[0].ID != 2 {
		t.Fatalf("unexpected member list: %+v", stored.Members)
	}

	if err := f.svc.Participate(ctx, session.ID, 2); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	stored, _ = f.svc.GetByID(ctx, session.ID)
	if len(stored.Members) != 1 {
		t.Fatalf("duplicate join mutated member list: %+v", stored.Members)
	}
}

func TestParticipateSessionNotFound(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Participate(context.Background(), 999, 2); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestParticipateUserNotFound(t *testing.T) {
	f := newFixture(t)
	session := f.createSession(t)
	if err := f.svc.Participate(context.Background(), session.ID, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSessionCheckedBeforeUser(t *testing.T) {
	f := newFixture(t)
	// Both missing: the session check must win.
	if err := f.svc.Participate(context.Background(), 999, 998); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNoLongerParticipate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	if err := f.svc.Participate(ctx, session.ID, 2); err != nil {
		t.Fatalf("Participate: %v", err)
	}
	if err := f.svc.NoLongerParticipate(ctx, session.ID, 2); err != nil {
		t.Fatalf("NoLongerParticipate: %v", err)
	}

	stored, err := f.svc.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Members) != 0 {
		t.Fatalf("expected empty member list, got %+v", stored.Members)
	}

	if err := f.svc.NoLongerParticipate(ctx, session.ID, 2); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestNoLongerParticipateSessionNotFound(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.NoLongerParticipate(context.Background(), 999, 2); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNoLongerParticipateSkipsUserLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	// User 999 does not exist; leave still reports only membership.
	if err := f.svc.NoLongerParticipate(ctx, session.ID, 999); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestParticipateRetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	f.sessions.conflictsLeft = 2
	f.sessions.saveCalls = 0
	if err := f.svc.Participate(ctx, session.ID, 2); err != nil {
		t.Fatalf("Participate after conflicts: %v", err)
	}
	if f.sessions.saveCalls != 3 {
		t.Fatalf("expected 3 save attempts, got %d", f.sessions.saveCalls)
	}

	stored, _ := f.svc.GetByID(ctx, session.ID)
	if len(stored.Members) != 1 {
		t.Fatalf("unexpected member list after retries: %+v", stored.Members)
	}
}

func TestParticipateGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	f.sessions.conflictsLeft = 10
	if err := f.svc.Participate(ctx, session.ID, 2); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []*Session{
		nil,
		{Name: "", Date: time.Now(), TeacherID: 1},
		{Name: "Flow", TeacherID: 1},
		{Name: "Flow", Date: time.Now()},
	}
	for i, in := range cases {
		if _, err := f.svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	if _, err := f.svc.Create(ctx, &Session{Name: "Flow", Date: time.Now(), TeacherID: 42}); !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t)

	updated, err := f.svc.Update(ctx, session.ID, &Session{
		Name:        "Evening Flow",
		Date:        session.Date,
		Description: "Updated",
		TeacherID:   1,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Evening Flow" || updated.Description != "Updated" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := f.svc.Update(ctx, 999, &Session{Name: "x", Date: time.Now(), TeacherID: 1}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := f.svc.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
