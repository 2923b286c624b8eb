package pg

import (
	"context"
	"database/sql"
	"errors"

	"zenclass.org/internal/auth"
	"zenclass.org/internal/booking"
)

type sessionStore struct {
	db *sql.DB
}

func (s *sessionStore) Create(ctx context.Context, sess *booking.Session) error {
	return s.db.QueryRowContext(ctx, `
		insert into sessions(name, date, description, teacher_id, version, created_at, updated_at)
		values ($1,$2,$3,$4, 0, now(), now())
		returning id, version, created_at, updated_at
	`, sess.Name, sess.Date, sess.Description, sess.TeacherID).
		Scan(&sess.ID, &sess.Version, &sess.CreatedAt, &sess.UpdatedAt)
}

func (s *sessionStore) FindByID(ctx context.Context, id int64) (*booking.Session, error) {
	var sess booking.Session
	err := s.db.QueryRowContext(ctx, `
		select id, name, date, description, teacher_id, version, created_at, updated_at
		from sessions where id=$1
	`, id).Scan(&sess.ID, &sess.Name, &sess.Date, &sess.Description, &sess.TeacherID,
		&sess.Version, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	members, err := s.loadMembers(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Members = members
	return &sess, nil
}

func (s *sessionStore) FindAll(ctx context.Context) ([]*booking.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, date, description, teacher_id, version, created_at, updated_at
		from sessions order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*booking.Session
	for rows.Next() {
		var sess booking.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Date, &sess.Description, &sess.TeacherID,
			&sess.Version, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sess := range out {
		members, err := s.loadMembers(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		sess.Members = members
	}
	return out, nil
}

// Save writes the whole session aggregate. The update is conditional on the
// version the session was loaded with; a concurrent writer bumps the version
// and makes this save fail with ErrVersionConflict instead of silently
// overwriting its member list.
func (s *sessionStore) Save(ctx context.Context, sess *booking.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update sessions
		set name=$1, date=$2, description=$3, teacher_id=$4, version=version+1, updated_at=now()
		where id=$5 and version=$6
	`, sess.Name, sess.Date, sess.Description, sess.TeacherID, sess.ID, sess.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `select exists(select 1 from sessions where id=$1)`, sess.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return booking.ErrSessionNotFound
		}
		return booking.ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `delete from session_users where session_id=$1`, sess.ID); err != nil {
		return err
	}
	for i, m := range sess.Members {
		if _, err := tx.ExecContext(ctx, `
			insert into session_users(session_id, user_id, position) values ($1,$2,$3)
		`, sess.ID, m.ID, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sess.Version++
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from sessions where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrSessionNotFound
	}
	return nil
}

func (s *sessionStore) loadMembers(ctx context.Context, sessionID int64) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select u.id, u.email, u.first_name, u.last_name, u.password, u.admin, u.created_at, u.updated_at
		from session_users su
		join users u on u.id = su.user_id
		where su.session_id=$1
		order by su.position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Admin,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}
