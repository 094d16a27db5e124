// Package ticket issues and validates the short-lived, single-use
// WebSocket connection tickets described in spec §4.D, adapting the
// teacher's session-JWT pattern to a narrow, 60-second-TTL claim set.
package ticket

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Claims is the narrow claim set carried by a ticket — session principal,
// channel, and a single-use Jti — replacing the teacher's 24h session
// token's broader claim set.
type Claims struct {
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
	jwt.RegisteredClaims
}

// Signer issues and validates tickets, and enforces single-use via a
// Redis-recorded Jti.
type Signer struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

// NewSigner builds a ticket signer bound to secret, with single-use
// tracking in redisClient.
func NewSigner(secret string, ttl time.Duration, redisClient *redis.Client) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, redis: redisClient}
}

// Ping checks the single-use store's reachability, so the issuing endpoint
// can fail fast with WS_TICKET_REDIS_UNAVAILABLE instead of handing out a
// ticket that Validate can never honour.
func (s *Signer) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Issue mints a single-use ticket for sessionID scoped to channel.
func (s *Signer) Issue(sessionID, channel string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		Channel:   channel,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ErrTicketRedisUnavailable signals WS_TICKET_REDIS_UNAVAILABLE — the
// ticket store could not be reached to check/record single-use state.
var ErrTicketRedisUnavailable = errors.New("ticket redis unavailable")

// ErrTicketInvalid covers expired/malformed/already-used tickets.
var ErrTicketInvalid = errors.New("ticket invalid")

// Validate verifies signature and expiry, then atomically consumes the
// ticket's Jti so a replayed ticket is rejected even on another process —
// the single-use contract is enforced through the shared L2 store, not
// process-local state.
func (s *Signer) Validate(ctx context.Context, raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTicketInvalid
	}

	key := "ws_ticket_used:" + claims.ID
	ok, err := s.redis.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return nil, ErrTicketRedisUnavailable
	}
	if !ok {
		return nil, ErrTicketInvalid
	}
	return &claims, nil
}
