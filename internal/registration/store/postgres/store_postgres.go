package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sisvita/internal/registration/models"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
	txcontext "sisvita/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Store persists Person/UserAccount pairs in PostgreSQL. CreatePair
// runs both inserts inside one transaction; neither row is visible
// unless both commit.
type Store struct {
	db     *sql.DB
	runner txcontext.Runner
}

// New constructs a PostgreSQL-backed profile store.
func New(db *sql.DB) *Store {
	return &Store{db: db, runner: txcontext.NewSQLRunner(db)}
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

func (s *Store) CreatePair(ctx context.Context, person *models.Person, account *models.UserAccount) error {
	if person.ID != account.ID {
		return fmt.Errorf("person %s and account %s diverge: %w", person.ID, account.ID, sentinel.ErrInvalidState)
	}

	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.insertPerson(ctx, person); err != nil {
			return err
		}
		return s.insertAccount(ctx, account)
	})
}

func (s *Store) insertPerson(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO persons (
			id, first_name, last_name, middle_name, birth_date, phone, email,
			document_number, gender_id, document_type_id, location_id, active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(person.ID),
		person.FirstName,
		person.LastName,
		person.MiddleName,
		person.BirthDate,
		person.Phone,
		person.Email,
		person.DocumentNumber,
		catalogRef(person.GenderID),
		catalogRef(person.DocumentTypeID),
		catalogRef(person.LocationID),
		person.Active,
		person.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("person %s: %w", person.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *Store) insertAccount(ctx context.Context, account *models.UserAccount) error {
	query := `
		INSERT INTO user_accounts (id, person_id, user_type_id, email_verified, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(account.ID),
		uuid.UUID(account.PersonID),
		catalogRef(account.UserTypeID),
		account.EmailVerified,
		account.Active,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("account %s: %w", account.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert user account: %w", err)
	}
	return nil
}

func (s *Store) FindPerson(ctx context.Context, userID id.UserID) (*models.Person, error) {
	query := `
		SELECT id, first_name, last_name, middle_name, birth_date, phone, email,
		       document_number, gender_id, document_type_id, location_id, active, created_at
		FROM persons
		WHERE id = $1
	`
	var (
		person models.Person
		rawID  uuid.UUID
		gender, docType, location sql.Null[uuid.UUID]
	)
	err := s.conn(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&rawID, &person.FirstName, &person.LastName, &person.MiddleName,
		&person.BirthDate, &person.Phone, &person.Email, &person.DocumentNumber,
		&gender, &docType, &location, &person.Active, &person.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan person: %w", err)
	}
	person.ID = id.UserID(rawID)
	person.GenderID = catalogID(gender)
	person.DocumentTypeID = catalogID(docType)
	person.LocationID = catalogID(location)
	return &person, nil
}

func (s *Store) FindAccount(ctx context.Context, userID id.UserID) (*models.UserAccount, error) {
	query := `
		SELECT id, person_id, user_type_id, email_verified, active, created_at
		FROM user_accounts
		WHERE id = $1
	`
	var (
		account        models.UserAccount
		rawID, childID uuid.UUID
		userType       sql.Null[uuid.UUID]
	)
	err := s.conn(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&rawID, &childID, &userType, &account.EmailVerified, &account.Active, &account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user account: %w", err)
	}
	account.ID = id.UserID(rawID)
	account.PersonID = id.UserID(childID)
	account.UserTypeID = catalogID(userType)
	return &account, nil
}

func (s *Store) SetEmailVerified(ctx context.Context, userID id.UserID) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE user_accounts SET email_verified = TRUE WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("set email verified: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	return nil
}

func catalogRef(ref *id.CatalogID) any {
	if ref == nil {
		return nil
	}
	return uuid.UUID(*ref)
}

func catalogID(v sql.Null[uuid.UUID]) *id.CatalogID {
	if !v.Valid {
		return nil
	}
	ref := id.CatalogID(v.V)
	return &ref
}
