package pg

import (
	"context"
	"database/sql"
	"errors"

	"zenclass.org/internal/booking"
)

type teacherStore struct {
	db *sql.DB
}

func (s *teacherStore) FindByID(ctx context.Context, id int64) (*booking.Teacher, error) {
	var t booking.Teacher
	err := s.db.QueryRowContext(ctx, `
		select id, first_name, last_name, created_at, updated_at from teachers where id=$1
	`, id).Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrTeacherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *teacherStore) List(ctx context.Context) ([]*booking.Teacher, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, first_name, last_name, created_at, updated_at from teachers order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*booking.Teacher
	for rows.Next() {
		var t booking.Teacher
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
