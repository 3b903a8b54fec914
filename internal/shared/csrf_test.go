package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := NewSessionManager(client, "test_session", "secret", time.Hour, false)
	sess := sm.newSession()
	return sess
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	cm := NewCSRFManager("csrfsecret")
	sess := newTestSession(t)

	token, err := cm.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Same session keeps the same token.
	again, err := cm.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, cm.VerifyToken(context.Background(), sess, token))
}

func TestCSRFTokenMismatch(t *testing.T) {
	cm := NewCSRFManager("csrfsecret")
	sess := newTestSession(t)

	token, err := cm.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	err = cm.VerifyToken(context.Background(), sess, token+"tampered")
	assert.True(t, errors.Is(err, ErrCSRFTokenMismatch))

	err = cm.VerifyToken(context.Background(), sess, "")
	assert.True(t, errors.Is(err, ErrCSRFTokenMissing))
}
