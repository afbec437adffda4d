// Package users implements accounts and session authentication backed
// by the local database.
package users

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered")
)

// Session lifetime. Expired rows are pruned by the scheduler.
const sessionTTL = 7 * 24 * time.Hour

// Service manages accounts and sessions.
type Service struct {
	db        *sql.DB
	jwtSecret []byte
	logger    zerolog.Logger
}

// NewService creates the user service. When configSecret is empty a
// random secret is generated once and persisted in the settings table,
// so tokens survive restarts.
func NewService(db *sql.DB, configSecret string, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		db:     db,
		logger: logger.With().Str("component", "users").Logger(),
	}

	secret, err := s.loadOrGenerateSecret(configSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT secret: %w", err)
	}
	s.jwtSecret = secret

	return s, nil
}

func (s *Service) loadOrGenerateSecret(configSecret string) ([]byte, error) {
	if configSecret != "" {
		return []byte(configSecret), nil
	}

	var stored string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'jwt_secret'`).Scan(&stored)
	if err == nil {
		return []byte(stored), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	secret := hex.EncodeToString(raw)

	if _, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES ('jwt_secret', ?)`, secret); err != nil {
		return nil, err
	}

	s.logger.Info().Msg("generated new JWT secret")
	return []byte(secret), nil
}

// CreateAccount registers a new user. Emails are stored lowercase and
// compared case-insensitively.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, hash, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("account created")
	return user, nil
}

// EnsureDefaultAccount seeds the configured account when the users
// table is empty, so a fresh install is immediately usable.
func (s *Service) EnsureDefaultAccount(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := s.CreateAccount(ctx, email, password)
	return err
}

// SignIn validates credentials and opens a new session. The returned
// Session carries the signed JWT in Token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !ValidatePassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	session.Token = token

	s.logger.Info().Str("email", user.Email).Msg("user signed in")
	return session, nil
}

// GetSession resolves a token to its active session. Any failure
// (bad token, revoked or expired session) is logged and reported as no
// session, never as an error.
func (s *Service) GetSession(ctx context.Context, token string) *Session {
	claims, err := s.parseToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session token rejected")
		return nil
	}

	var session Session
	err = s.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?`, claims.SessionID).
		Scan(&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error().Err(err).Msg("session lookup failed")
		}
		return nil
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		return nil
	}

	session.Email = claims.Email
	return &session
}

// SignOut revokes the session behind a token. A token that does not
// resolve to a session is a no-op success.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, claims.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// PruneExpiredSessions deletes sessions past their expiry and returns
// the IDs removed, so callers can discard per-session state.
func (s *Service) PruneExpiredSessions(ctx context.Context) ([]string, error) {
	now := time.Now().UTC()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now); err != nil {
		return nil, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return ids, nil
}

func (s *Service) signToken(session *Session) (string, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			Issuer:    "jstream",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
