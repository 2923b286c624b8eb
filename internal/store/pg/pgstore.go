package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"zenclass.org/internal/auth"
	"zenclass.org/internal/booking"
)

// Store bundles the PostgreSQL-backed stores behind one connection pool.
type Store struct {
	db *sql.DB
}

var (
	_ auth.UserStore       = (*userStore)(nil)
	_ booking.SessionStore = (*sessionStore)(nil)
	_ booking.TeacherStore = (*teacherStore)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing pool (used by tests with sqlmock).
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() auth.UserStore { return &userStore{db: s.db} }

func (s *Store) Sessions() booking.SessionStore { return &sessionStore{db: s.db} }

func (s *Store) Teachers() booking.TeacherStore { return &teacherStore{db: s.db} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
