package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carhive/carhive/internal/model"
)

const (
	carKeyPrefix = "car:"

	// DefaultCarTTL is the TTL for cached car records.
	DefaultCarTTL = time.Hour
)

// carKey builds the Redis key for a car record. The owner is part of
// the key so a cached record can never leak across tenants.
func carKey(ownerID, id string) string {
	return carKeyPrefix + ownerID + ":" + id
}

// GetCar retrieves a car from cache. Returns ErrCacheMiss if not found.
func (c *Cache) GetCar(ctx context.Context, ownerID, id string) (*model.Car, error) {
	data, err := c.client.Get(ctx, carKey(ownerID, id)).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var car model.Car
	if err := json.Unmarshal(data, &car); err != nil {
		// Corrupted entry - evict and report a miss
		c.client.Del(ctx, carKey(ownerID, id))
		return nil, ErrCacheMiss
	}

	return &car, nil
}

// SetCar stores a car record in cache.
func (c *Cache) SetCar(ctx context.Context, car *model.Car) error {
	data, err := json.Marshal(car)
	if err != nil {
		return fmt.Errorf("marshal car: %w", err)
	}

	if err := c.client.Set(ctx, carKey(car.OwnerID, car.ID), data, DefaultCarTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache car: %w", err)
	}

	return nil
}

// DeleteCar removes a car record from cache.
func (c *Cache) DeleteCar(ctx context.Context, ownerID, id string) error {
	if err := c.client.Del(ctx, carKey(ownerID, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete car from cache: %w", err)
	}

	return nil
}
