package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-addons/internal/models"
)

const addonKeyPrefix = "addon:"

// Cache is a read-through cache over catalog lookups. Entries are stored as
// JSON with a TTL so a stale flag never outlives the configured window.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{Client: client, TTL: ttl}
}

// cachedAddon is the cache wire format. The explicit main image has to be
// carried separately because the entity derives it otherwise.
type cachedAddon struct {
	Addon        models.Addon `json:"addon"`
	MainImageURL string       `json:"mainImageUrl,omitempty"`
}

// GetAddon returns the cached add-on, or (nil, nil) on a miss.
func (c *Cache) GetAddon(ctx context.Context, id string) (*models.Addon, error) {
	payload, err := c.Client.Get(ctx, addonKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached cachedAddon
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.Client.Del(ctx, addonKeyPrefix+id)
		return nil, nil
	}

	a := cached.Addon
	if cached.MainImageURL != "" {
		a.RestoreMainImage(cached.MainImageURL)
	}
	return &a, nil
}

func (c *Cache) SetAddon(ctx context.Context, a *models.Addon) error {
	payload, err := json.Marshal(cachedAddon{
		Addon:        *a,
		MainImageURL: a.ExplicitMainImage(),
	})
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, addonKeyPrefix+a.ID, payload, c.TTL).Err()
}

func (c *Cache) InvalidateAddon(ctx context.Context, id string) error {
	return c.Client.Del(ctx, addonKeyPrefix+id).Err()
}
