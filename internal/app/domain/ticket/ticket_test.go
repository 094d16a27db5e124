package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSigner("test-secret", 60*time.Second, rdb)
}

func TestTicket_ValidOnce(t *testing.T) {
	s := newTestSigner(t)
	raw, err := s.Issue("session-1", "search")
	require.NoError(t, err)

	claims, err := s.Validate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)

	_, err = s.Validate(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTicketInvalid, "a consumed ticket must be rejected on replay")
}

func TestTicket_RejectsMalformed(t *testing.T) {
	s := newTestSigner(t)
	_, err := s.Validate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrTicketInvalid)
}
