// Package session keeps the server-side record of logged-in users.
// Every issued token names a session by its jti; the token is only honoured
// while that session exists, so logout takes effect immediately.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkpress/internal/models"
)

const (
	// DefaultTTL is how long a session lives before it expires.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"

	// idLength is the byte length of a session id (64 hex chars).
	idLength = 32
)

// Hash fields of a stored session.
const (
	fieldUserID    = "user_id"
	fieldUsername  = "username"
	fieldRole      = "role"
	fieldCreatedAt = "created_at"
)

// Data is what a session records about its user.
type Data struct {
	UserID    uuid.UUID
	Username  string
	Role      models.Role
	CreatedAt time.Time
}

// Store keeps sessions in Valkey as hashes that expire after the TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a Valkey-backed session registry.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, now: time.Now}
}

func key(id string) string { return keyPrefix + id }

// Create opens a session for data and returns its id. The hash and its
// expiry are written in one transaction.
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	data.CreatedAt = s.now().UTC()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(id),
			fieldUserID, data.UserID.String(),
			fieldUsername, data.Username,
			fieldRole, string(data.Role),
			fieldCreatedAt, data.CreatedAt.Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key(id), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}
	return id, nil
}

// Get returns the session, or nil when it expired, was destroyed or never
// existed.
func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, nil
	}

	fields, err := s.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decode(fields)
}

func decode(fields map[string]string) (*Data, error) {
	userID, err := uuid.Parse(fields[fieldUserID])
	if err != nil {
		return nil, fmt.Errorf("session decode user id: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("session decode created_at: %w", err)
	}
	return &Data{
		UserID:    userID,
		Username:  fields[fieldUsername],
		Role:      models.Role(fields[fieldRole]),
		CreatedAt: created,
	}, nil
}

// Destroy removes the session. Unknown ids are not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
