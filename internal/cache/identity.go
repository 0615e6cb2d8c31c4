package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carhive/carhive/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "auth:identity:"
	// identityCacheTTL bounds how long a deleted user's token keeps working.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the wire form of an identity in Redis.
type cachedIdentity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// identityKey builds the Redis key for a user's cached identity.
func identityKey(userID string) string {
	return identityCachePrefix + userID
}

// GetIdentity retrieves a cached identity by user ID.
// Returns nil, nil on a miss; a miss is not an error.
func (c *Cache) GetIdentity(ctx context.Context, userID string) (*model.Identity, error) {
	data, err := c.client.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		UserID: cached.UserID,
		Email:  cached.Email,
	}, nil
}

// SetIdentity caches a resolved identity.
func (c *Cache) SetIdentity(ctx context.Context, id *model.Identity) error {
	cached := cachedIdentity{
		UserID: id.UserID,
		Email:  id.Email,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, identityKey(id.UserID), data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, userID string) error {
	return c.client.Del(ctx, identityKey(userID)).Err()
}
