// Package auth is the authorization engine: it owns registration,
// login/logout, session-token resolution and the access decisions the
// file layer consumes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/models"
	"github.com/files-manager/internal/session"
)

// UserStore is the slice of the metadata store the engine needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Service struct {
	users      UserStore
	sessions   session.Store
	sessionTTL time.Duration
	logger     *logrus.Logger
}

func NewService(users UserStore, sessions session.Store, sessionTTL time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates a user with a bcrypt-hashed password. The plaintext
// is never stored or logged. The email-exists pre-check and the insert
// are not atomic; a racing duplicate is still caught by the unique
// index on email.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies the credential pair and mints a session token. Unknown
// email and wrong password both come back as ErrInvalidCredentials so
// callers cannot probe which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return token, nil
}

// Logout destroys the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return ErrUnauthenticated
	}
	return err
}

// ResolveIdentity maps a bearer token to a user id. Absent, unknown and
// expired tokens all fail the same way. Resolution does not refresh the
// session TTL.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return uuid.Nil, ErrUnauthenticated
		}
		return uuid.Nil, fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
