package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sisvita/internal/identity"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
	txcontext "sisvita/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Store persists identities in PostgreSQL. Email uniqueness rides on
// the case-insensitive unique index over lower(email).
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed identity store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Create(ctx context.Context, ident *identity.Identity) error {
	query := `
		INSERT INTO identities (id, email, password_hash, display_name, email_verified, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(ident.ID),
		ident.Email,
		ident.PasswordHash,
		ident.DisplayName,
		ident.EmailVerified,
		ident.Active,
		ident.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email %s: %w", ident.Email, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error) {
	query := `
		SELECT id, email, password_hash, display_name, email_verified, active, created_at
		FROM identities
		WHERE id = $1
	`
	return s.scanOne(s.conn(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	query := `
		SELECT id, email, password_hash, display_name, email_verified, active, created_at
		FROM identities
		WHERE lower(email) = lower($1)
	`
	return s.scanOne(s.conn(ctx).QueryRowContext(ctx, query, email))
}

func (s *Store) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("identity %s: %w", userID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) SetEmailVerified(ctx context.Context, userID id.UserID) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE identities SET email_verified = TRUE WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("set email verified: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("identity %s: %w", userID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) scanOne(row *sql.Row) (*identity.Identity, error) {
	var (
		ident identity.Identity
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &ident.Email, &ident.PasswordHash, &ident.DisplayName,
		&ident.EmailVerified, &ident.Active, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("identity: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	ident.ID = id.UserID(rawID)
	return &ident, nil
}
