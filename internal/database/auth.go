package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"product-media/internal/logging"
	"product-media/internal/metrics"
)

// ErrInvalidCredentials indicates a password or session token that did
// not match any stored value.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HasUsers reports whether an admin account has been created yet.
func (d *Database) HasUsers(ctx context.Context) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("has_users", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(queryCtx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// CreateUser creates the admin account with the given password. Only one
// account is supported; the call fails if one already exists.
func (d *Database) CreateUser(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_user", start, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(execCtx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		err = errors.New("admin account already exists")
		return err
	}

	_, err = d.db.ExecContext(execCtx,
		"INSERT INTO users (password_hash) VALUES (?)", string(hash))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logging.Info("Admin account created")
	return nil
}

// ValidatePassword checks the given password against the admin account
// and returns the account's user id on success.
func (d *Database) ValidatePassword(ctx context.Context, password string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_password", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	var hash string
	err = d.db.QueryRowContext(queryCtx,
		"SELECT id, password_hash FROM users LIMIT 1").Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		err = ErrInvalidCredentials
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		err = ErrInvalidCredentials
		return 0, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	return id, nil
}

// UpdatePassword replaces the admin account's password hash. Used by the
// resetpw tool. Existing sessions are revoked.
func (d *Database) UpdatePassword(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_password", start, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(execCtx,
		"UPDATE users SET password_hash = ?, updated_at = strftime('%s', 'now')",
		string(hash))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = errors.New("no admin account exists")
		return err
	}

	if _, err = d.db.ExecContext(execCtx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// CreateSession creates a session for the user and returns the unhashed
// token. Only the SHA-256 hash of the token is stored.
func (d *Database) CreateSession(ctx context.Context, userID int64) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_session", start, err) }()

	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	expiresAt := time.Now().Add(SessionDuration).Unix()
	_, err = d.db.ExecContext(execCtx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, hashToken(token), expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// ValidateSession checks a session token and returns the session's user
// id when valid and unexpired.
func (d *Database) ValidateSession(ctx context.Context, token string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_session", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var userID int64
	err = d.db.QueryRowContext(queryCtx,
		"SELECT user_id FROM sessions WHERE token = ? AND expires_at > ?",
		hashToken(token), time.Now().Unix()).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrInvalidCredentials
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to validate session: %w", err)
	}
	return userID, nil
}

// DeleteSession removes a session by its unhashed token. Missing tokens
// are not an error; logout is idempotent.
func (d *Database) DeleteSession(ctx context.Context, token string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_session", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(execCtx,
		"DELETE FROM sessions WHERE token = ?", hashToken(token))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanExpiredSessions removes expired sessions and returns how many
// were deleted. Called periodically from main.
func (d *Database) CleanExpiredSessions(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("clean_expired_sessions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(execCtx,
		"DELETE FROM sessions WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logging.Debug("Cleaned %d expired sessions", deleted)
	}
	return deleted, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
