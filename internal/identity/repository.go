package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error)
	// Search matches query case-insensitively against alias and full name.
	// Users without an alias and the user excludeID are left out.
	Search(ctx context.Context, query, excludeID string, limit int) ([]User, error)
}

// Schema creates the users table.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  phone TEXT NOT NULL UNIQUE,
  alias TEXT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  avatar_url TEXT NOT NULL DEFAULT '',
  balance_cents BIGINT NOT NULL DEFAULT 0,
  can_give_tips BOOLEAN NOT NULL DEFAULT TRUE,
  can_receive_tips BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_alias_norm ON users (lower(alias));
`

const userColumns = `id, phone, COALESCE(alias, ''), full_name, avatar_url, balance_cents, can_give_tips, can_receive_tips, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, Schema)
	return err
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, phone, alias, full_name, avatar_url, balance_cents, can_give_tips, can_receive_tips, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $9)`,
		userID, user.Phone, user.Alias, user.FullName, user.AvatarURL, user.BalanceCents, user.CanGiveTips, user.CanReceiveTips, user.CreatedAt.UTC())
	if isUniqueViolation(err) {
		if user.Alias != "" && constraintMentions(err, "alias") {
			return ErrAliasTaken
		}
		return ErrPhoneTaken
	}
	return err
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// UpdateProfile stores the editable fields and returns the updated user.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE users
        SET alias = $2, full_name = $3, can_give_tips = $4, can_receive_tips = $5, updated_at = now()
        WHERE id = $1
        RETURNING `+userColumns, userID, in.Alias, in.FullName, in.CanGiveTips, in.CanReceiveTips)
	user, err := scanUser(row)
	if isUniqueViolation(err) {
		return User{}, ErrAliasTaken
	}
	return user, err
}

// Search runs a case-insensitive substring match on alias and full name.
func (r *PostgresRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]User, error) {
	pattern := "%" + escapeLike(query) + "%"
	var exclude *uuid.UUID
	if parsed, err := uuid.Parse(excludeID); err == nil {
		exclude = &parsed
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users
        WHERE alias IS NOT NULL
          AND (alias ILIKE $1 OR full_name ILIKE $1)
          AND ($2::uuid IS NULL OR id <> $2)
        ORDER BY lower(alias)
        LIMIT $3`, pattern, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id   uuid.UUID
		user User
	)
	err := row.Scan(&id, &user.Phone, &user.Alias, &user.FullName, &user.AvatarURL, &user.BalanceCents,
		&user.CanGiveTips, &user.CanReceiveTips, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintMentions(err error, field string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.Contains(strings.ToLower(pgErr.ConstraintName), field)
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
