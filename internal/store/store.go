package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"waymark/shared/go/models"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates an invalid or missing session.
	ErrUnauthorized = errors.New("unauthorized")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser registers a new user.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
	`, username, hash); err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// Authenticate validates credentials and returns a session token.
func (s *Store) Authenticate(ctx context.Context, username, password string) (string, error) {
	var (
		userID int64
		hash   []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a comparison so response timing does not leak
			// whether the username exists.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id)
		VALUES ($1, $2)
	`, token, userID); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// DeleteSession invalidates the session behind the token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE token = $1
	`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if rows == 0 {
		return ErrUnauthorized
	}

	return nil
}

// UserIDByToken resolves a session token to its owner.
func (s *Store) UserIDByToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM sessions
		WHERE token = $1
	`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

// UserByToken returns the profile of the session owner.
func (s *Store) UserByToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.created_at
		FROM users u
		JOIN sessions s ON s.user_id = u.id
		WHERE s.token = $1
	`, token).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
