package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"librarycard/internal/card"
)

// Postgres persists cards in the student_cards table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects with pgx and applies the schema.
func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the student_cards table if missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS student_cards (
			id                BIGSERIAL PRIMARY KEY,
			full_name         TEXT NOT NULL,
			enrollment_number TEXT NOT NULL UNIQUE,
			department        TEXT NOT NULL,
			course            TEXT NOT NULL,
			semester          TEXT NOT NULL,
			validity_years    INTEGER NOT NULL,
			photo_url         TEXT NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Create upserts req. An overwrite takes the freshly drawn sequence id and
// timestamp so the row looks exactly like a new insert.
func (p *Postgres) Create(ctx context.Context, req card.Request) (card.StoredCard, error) {
	sc := card.StoredCard{Request: req}
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO student_cards (full_name, enrollment_number, department, course, semester, validity_years, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (enrollment_number) DO UPDATE SET
			id             = EXCLUDED.id,
			full_name      = EXCLUDED.full_name,
			department     = EXCLUDED.department,
			course         = EXCLUDED.course,
			semester       = EXCLUDED.semester,
			validity_years = EXCLUDED.validity_years,
			photo_url      = EXCLUDED.photo_url,
			created_at     = EXCLUDED.created_at
		RETURNING id, created_at
	`, req.FullName, req.EnrollmentNumber, req.Department, req.Course, req.Semester, req.ValidityYears, req.PhotoURL, time.Now().UTC())
	if err := row.Scan(&sc.ID, &sc.CreatedAt); err != nil {
		return card.StoredCard{}, fmt.Errorf("insert student card: %w", err)
	}
	return sc, nil
}

const selectCards = `SELECT id, full_name, enrollment_number, department, course, semester, validity_years, photo_url, created_at FROM student_cards`

// GetByEnrollment returns the card with the given enrollment number.
func (p *Postgres) GetByEnrollment(ctx context.Context, enrollmentNumber string) (card.StoredCard, error) {
	row := p.db.QueryRowContext(ctx, selectCards+` WHERE enrollment_number = $1`, enrollmentNumber)
	sc, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return card.StoredCard{}, ErrNotFound
	}
	if err != nil {
		return card.StoredCard{}, fmt.Errorf("get student card: %w", err)
	}
	return sc, nil
}

// ListAll returns every card ordered by id.
func (p *Postgres) ListAll(ctx context.Context) ([]card.StoredCard, error) {
	rows, err := p.db.QueryContext(ctx, selectCards+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list student cards: %w", err)
	}
	defer rows.Close()

	var out []card.StoredCard
	for rows.Next() {
		sc, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (p *Postgres) Healthy(ctx context.Context) bool {
	return p.db.PingContext(ctx) == nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (card.StoredCard, error) {
	var sc card.StoredCard
	err := s.Scan(&sc.ID, &sc.FullName, &sc.EnrollmentNumber, &sc.Department, &sc.Course,
		&sc.Semester, &sc.ValidityYears, &sc.PhotoURL, &sc.CreatedAt)
	return sc, err
}
