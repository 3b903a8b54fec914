package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gst-reporter/gst-reporter/internal/shared"
)

type memRepo struct {
	users map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]string)}
}

func (m *memRepo) CreateUser(ctx context.Context, username, passwordHash string) error {
	if _, ok := m.users[username]; ok {
		return shared.ErrDuplicateUsername
	}
	m.users[username] = passwordHash
	return nil
}

func (m *memRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	hash, ok := m.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &User{Username: username, PasswordHash: hash}, nil
}

func (m *memRepo) CreateSession(ctx context.Context, id, username string, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (m *memRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Register(context.Background(), "ramesh", "secret123"))

	hash := repo.users["ramesh"]
	assert.NotEqual(t, "secret123", hash, "password must not be stored in plain text")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")))
}

func TestRegisterDuplicate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Register(context.Background(), "ramesh", "secret123"))
	err := svc.Register(context.Background(), "ramesh", "other")
	assert.True(t, errors.Is(err, shared.ErrDuplicateUsername))
}

func TestAuthenticate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Register(context.Background(), "ramesh", "secret123"))

	user, err := svc.Authenticate(context.Background(), "ramesh", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ramesh", user.Username)

	_, err = svc.Authenticate(context.Background(), "ramesh", "wrong")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))

	_, err = svc.Authenticate(context.Background(), "nobody", "secret123")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials), "unknown user must look like bad credentials")
}
