package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUsernameRequired   = errors.New("username and password are required")
	ErrNotAdminEmployee   = errors.New("employee does not have admin access")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

type AuthService struct {
	cfg   *config.Config
	store store.Store
	clock *timeclock.Clock
}

func NewAuthService(cfg *config.Config, st store.Store, clock *timeclock.Clock) *AuthService {
	return &AuthService{cfg: cfg, store: st, clock: clock}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// CreateAdmin creates a new admin account
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUsernameRequired
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hashedPassword,
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return admin, nil
}

// NeedsSetup reports whether no admin account exists yet.
func (s *AuthService) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Authenticate verifies credentials and returns the admin
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := s.store.FindAdmin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// AuthenticatePIN lets an employee tagged Admin open an admin session.
func (s *AuthService) AuthenticatePIN(ctx context.Context, pin string) (*models.Employee, error) {
	employee, err := s.store.FindEmployee(ctx, strings.TrimSpace(pin))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !employee.Tags.Contains(models.AdminTag) {
		return nil, ErrNotAdminEmployee
	}
	return employee, nil
}

// CreateDefaultAdmin creates the configured admin when no admin exists yet.
func (s *AuthService) CreateDefaultAdmin(ctx context.Context) error {
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.cfg.DefaultAdmin.Password == "" {
		logger.Warn("no admin account exists and default_admin.password is empty; admin login is unavailable")
		return nil
	}

	if _, err := s.CreateAdmin(ctx, s.cfg.DefaultAdmin.Username, s.cfg.DefaultAdmin.Password); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}
	logger.Info("default admin created", "username", s.cfg.DefaultAdmin.Username)
	return nil
}

// CreateSession signs a token for subject and stores the server-side session.
func (s *AuthService) CreateSession(ctx context.Context, subject string) (*models.Session, error) {
	token, expiresAt, err := s.generateToken(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &models.Session{
		Token:     token,
		Subject:   subject,
		Admin:     true,
		ExpiresAt: expiresAt,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession verifies the token signature and returns the live session.
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Session.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Session.Issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	session, err := s.store.GetSession(ctx, token, s.clock.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return session, nil
}

// DeleteSession deletes a session
func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// DeleteExpiredSessions removes expired sessions
func (s *AuthService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.clock.Now())
}

// SessionTTL is the configured lifetime of an admin session.
func (s *AuthService) SessionTTL() time.Duration {
	return config.Duration(s.cfg.Session.TTL, 12*time.Hour)
}

func (s *AuthService) generateToken(subject string) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.SessionTTL())

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.cfg.Session.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.Session.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
