// Package store implements Postgres-backed persistence for the meetup
// catalog, the registration ledger, reviews, and user accounts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"meetup/internal/auth"
)

var (
	// ErrAccountExists signals the email is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidAccount indicates validation failure for signup data.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized indicates an invalid or missing session.
	ErrUnauthorized = errors.New("unauthorized")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

const minPasswordLength = 6

// Account is a registered user of the application.
type Account struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store provides persistence backed by Postgres.
type Store struct {
	db     *sql.DB
	tokens *auth.TokenManager
}

// New sets up a Store using the provided database handle and token manager.
func New(db *sql.DB, tokens *auth.TokenManager) *Store {
	return &Store{db: db, tokens: tokens}
}

// CreateAccount registers a new user. Emails are normalized to lower case so
// uniqueness is case-insensitive.
func (s *Store) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Account{}, fmt.Errorf("%w: email and password are required", ErrInvalidAccount)
	}
	if !strings.Contains(email, "@") {
		return Account{}, fmt.Errorf("%w: malformed email", ErrInvalidAccount)
	}
	if len(password) < minPasswordLength {
		return Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := Account{Email: email}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, email, hash).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, ErrAccountExists
		}
		return Account{}, fmt.Errorf("insert user: %w", err)
	}

	return account, nil
}

// Authenticate validates credentials and returns a session token with the account.
func (s *Store) Authenticate(ctx context.Context, email, password string) (string, Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		account Account
		hash    []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&account.ID, &account.Email, &hash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Equalize timing between unknown-user and wrong-password paths.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", Account{}, ErrInvalidCredentials
		}
		return "", Account{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", Account{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return "", Account{}, fmt.Errorf("create token: %w", err)
	}

	return token, account, nil
}

// AccountByToken returns the account for a valid session token.
func (s *Store) AccountByToken(ctx context.Context, token string) (Account, error) {
	userID, err := s.userIDForToken(token)
	if err != nil {
		return Account{}, err
	}

	var account Account
	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&account.ID, &account.Email, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrUnauthorized
		}
		return Account{}, fmt.Errorf("lookup account: %w", err)
	}

	return account, nil
}

func (s *Store) userIDForToken(token string) (int64, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
