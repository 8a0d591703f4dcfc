// Package repo stores users and their saved deck projects in Postgres.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"Deckframe/internal/calc/framing"
	deckerr "Deckframe/internal/errors"
)

type Project struct {
	ID        uuid.UUID     `json:"id"`
	OwnerID   int           `json:"ownerId"`
	Name      string        `json:"name"`
	Deck      framing.Input `json:"deck"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, ownerID int, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, ownerID int) ([]Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, ownerID int, id uuid.UUID) error
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       SERIAL PRIMARY KEY,
	login    TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
	id         UUID PRIMARY KEY,
	owner_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	deck       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS projects_owner_idx ON projects (owner_id);
`

// Open connects to Postgres at dsn and pings it. TLS is required unless
// dsn sets sslmode itself.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", withSSLMode(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// withSSLMode adds sslmode=require to a URL or key=value dsn that has no
// sslmode.
func withSSLMode(dsn string) string {
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if u, err := url.Parse(dsn); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		q := u.Query()
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn + " sslmode=require")
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Migrate creates the tables when they do not exist yet.
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetBylogin returns the id and password hash for login, or a NOT_FOUND
// error.
func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", deckerr.New(deckerr.ErrCodeNotFound, "user %q not found", login)
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) CreateProject(ctx context.Context, p *Project) error {
	deck, err := json.Marshal(p.Deck)
	if err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	query := "INSERT INTO projects (id, owner_id, name, deck, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)"
	_, err = r.db.ExecContext(ctx, query, p.ID, p.OwnerID, p.Name, deck, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PostgresUserRepository) GetProject(ctx context.Context, ownerID int, id uuid.UUID) (*Project, error) {
	query := "SELECT id, owner_id, name, deck, created_at, updated_at FROM projects WHERE id=$1 AND owner_id=$2"
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, deckerr.New(deckerr.ErrCodeNotFound, "project %s not found", id)
	}
	return p, err
}

func (r *PostgresUserRepository) ListProjects(ctx context.Context, ownerID int) ([]Project, error) {
	query := "SELECT id, owner_id, name, deck, created_at, updated_at FROM projects WHERE owner_id=$1 ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepository) UpdateProject(ctx context.Context, p *Project) error {
	deck, err := json.Marshal(p.Deck)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	query := "UPDATE projects SET name=$1, deck=$2, updated_at=$3 WHERE id=$4 AND owner_id=$5"
	res, err := r.db.ExecContext(ctx, query, p.Name, deck, p.UpdatedAt, p.ID, p.OwnerID)
	if err != nil {
		return err
	}
	return expectOne(res, p.ID)
}

func (r *PostgresUserRepository) DeleteProject(ctx context.Context, ownerID int, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id=$1 AND owner_id=$2", id, ownerID)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var deck []byte
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &deck, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(deck, &p.Deck); err != nil {
		return nil, err
	}
	return &p, nil
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return deckerr.New(deckerr.ErrCodeNotFound, "project %s not found", id)
	}
	return nil
}
