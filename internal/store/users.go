package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// historyCap bounds the stored login history per user, most recent first.
const historyCap = 8

// LoginEntry records one successful login.
type LoginEntry struct {
	Date      time.Time `json:"date"`
	UserAgent string    `json:"userAgent"`
}

// User is the account record. Password carries the bcrypt hash and is never
// handed to views.
type User struct {
	ID           int
	Username     string
	Password     string
	Email        string
	LoginHistory []LoginEntry
}

// RegisterUser creates a new account. Username, email and both password
// fields are required and the passwords must match (ErrInvalid otherwise);
// a taken username fails with ErrConflict.
func (s *Store) RegisterUser(ctx context.Context, username, password, password2, email string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || strings.TrimSpace(email) == "" {
		return fmt.Errorf("username, password and email are required: %w", ErrInvalid)
	}
	if password != password2 {
		return fmt.Errorf("passwords do not match: %w", ErrInvalid)
	}

	// Cost factor 12 for good security/performance balance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var exists int
	if err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("username %q taken: %w", username, ErrConflict)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO users (username, password, email, login_history)
		VALUES (?, ?, ?, '[]')`, username, string(hash), email)
	if err != nil {
		s.logger.WithError(err).WithField("username", username).Error("Failed to register user")
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.WithField("username", username).Info("User registered")
	return nil
}

// LoginUser verifies credentials and, on success, prepends a login-history
// entry (stamped now, carrying the caller's user agent) and persists the
// capped history. Unknown users and wrong passwords fail identically.
func (s *Store) LoginUser(ctx context.Context, username, password, userAgent string) (*User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.userByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("incorrect password for user %q: %w", username, ErrInvalid)
	}

	entry := LoginEntry{Date: time.Now().UTC(), UserAgent: userAgent}
	user.LoginHistory = append([]LoginEntry{entry}, user.LoginHistory...)
	if len(user.LoginHistory) > historyCap {
		user.LoginHistory = user.LoginHistory[:historyCap]
	}

	historyJSON, err := json.Marshal(user.LoginHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login history: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx,
		"UPDATE users SET login_history = ? WHERE id = ?", string(historyJSON), user.ID); err != nil {
		s.logger.WithError(err).WithField("username", username).Error("Failed to update login history")
		return nil, fmt.Errorf("failed to update login history: %w", err)
	}

	return user, nil
}

// UserByUsername returns an account by name, or ErrNotFound.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.userByUsername(ctx, username)
}

func (s *Store) userByUsername(ctx context.Context, username string) (*User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, username, password, email, login_history
		FROM users WHERE username = ?`, username)

	var user User
	var email sql.NullString
	var historyJSON string
	err := row.Scan(&user.ID, &user.Username, &user.Password, &email, &historyJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	user.Email = email.String

	if err := json.Unmarshal([]byte(historyJSON), &user.LoginHistory); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("Corrupt login history, resetting")
		user.LoginHistory = nil
	}
	return &user, nil
}
