package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/models"
	"github.com/files-manager/internal/session"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

func newTestService() (*Service, *fakeUserStore, *session.MemoryStore) {
	users := newFakeUserStore()
	sessions := session.NewMemoryStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(users, sessions, 24*time.Hour, logger), users, sessions
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = svc.Register(ctx, "bob@example.com", "")
	assert.ErrorIs(t, err, ErrMissingPassword)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, users, _ := newTestService()

	user, err := svc.Register(context.Background(), "bob@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)

	stored := users.users[user.ID]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.PasswordHash, "secret")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob@example.com", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginAndResolve(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "bob@example.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := svc.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	// Wrong password and unknown email must be indistinguishable.
	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConcurrentSessionsPerUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "bob@example.com", "secret")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "bob@example.com", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		resolved, err := svc.ResolveIdentity(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveIdentity(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, svc.Logout(ctx, token), ErrUnauthenticated)
}

func TestResolveIdentityFailures(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveIdentity(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ResolveIdentity(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Register(ctx, "bob@example.com", "secret")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "bob@example.com", "secret")
	require.NoError(t, err)

	// Jump past the 24h TTL; the token must stop resolving.
	sessions.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })
	_, err = svc.ResolveIdentity(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
