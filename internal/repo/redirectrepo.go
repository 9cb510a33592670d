package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/daveio/golinks/internal/model"
)

const PgUniqueViolation pq.ErrorCode = "23505"

var (
	// ErrNoRecord is returned when no row matches the slug.
	ErrNoRecord = errors.New("repo: no redirect for slug")
	// ErrDuplicateSlug is returned when the store rejects an insert on its uniqueness constraint.
	ErrDuplicateSlug = errors.New("repo: slug already exists")
)

type RedirectRepo interface {
	GetBySlug(ctx context.Context, slug string) (model.Redirect, error)
	Insert(ctx context.Context, slug string, destination string) (model.Redirect, error)
	Delete(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]model.Redirect, error)
	ListSlugs(ctx context.Context) ([]string, error)
}

// SQLRepo works against any database/sql handle holding the redirects table.
type SQLRepo struct{ db *sql.DB }

func NewSQL(db *sql.DB) *SQLRepo { return &SQLRepo{db} }

func (r *SQLRepo) GetBySlug(ctx context.Context, slug string) (model.Redirect, error) {
	const q = `SELECT slug, destination FROM redirects WHERE slug = $1 LIMIT 1`

	var rec model.Redirect
	err := r.db.QueryRowContext(ctx, q, slug).Scan(&rec.Slug, &rec.Destination)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Redirect{}, ErrNoRecord
	}
	return rec, err
}

func (r *SQLRepo) Insert(ctx context.Context, slug string, destination string) (model.Redirect, error) {
	const q = `
		INSERT INTO redirects (slug, destination)
		VALUES ($1, $2)
		RETURNING slug, destination`

	var rec model.Redirect

	err := r.db.QueryRowContext(ctx, q, slug, destination).Scan(&rec.Slug, &rec.Destination)
	if IsUniqueViolation(err) {
		return model.Redirect{}, ErrDuplicateSlug
	}
	return rec, err
}

func (r *SQLRepo) Delete(ctx context.Context, slug string) (bool, error) {
	const q = `DELETE FROM redirects WHERE slug = $1`

	res, err := r.db.ExecContext(ctx, q, slug)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLRepo) List(ctx context.Context) ([]model.Redirect, error) {
	const q = `SELECT slug, destination FROM redirects ORDER BY slug ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Redirect{}
	for rows.Next() {
		var rec model.Redirect
		if err := rows.Scan(&rec.Slug, &rec.Destination); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLRepo) ListSlugs(ctx context.Context) ([]string, error) {
	const q = `SELECT slug FROM redirects ORDER BY slug ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// IsUniqueViolation recognises uniqueness failures from both supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == PgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
