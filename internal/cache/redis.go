package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aarondkim/flights/config"
	"github.com/aarondkim/flights/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores ranked search results. Flights are immutable reference
// data, so a cached result never goes stale; the TTL just bounds memory.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

type SearchKey struct {
	Origin     string
	Dest       string
	Day        int
	Limit      int
	DirectOnly bool
}

// cachedItinerary flattens the direct/connecting variant for JSON.
type cachedItinerary struct {
	Legs []domain.Flight `json:"legs"`
}

// GetSearch returns the cached result set, or nil on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, key SearchKey) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached []cachedItinerary
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	result := make([]domain.Itinerary, 0, len(cached))
	for _, ci := range cached {
		switch len(ci.Legs) {
		case 1:
			result = append(result, domain.Direct{Leg: ci.Legs[0]})
		case 2:
			result = append(result, domain.Connecting{Out: ci.Legs[0], Next: ci.Legs[1]})
		default:
			return nil, fmt.Errorf("cached itinerary has %d legs", len(ci.Legs))
		}
	}
	return result, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key SearchKey, itineraries []domain.Itinerary) error {
	cached := make([]cachedItinerary, 0, len(itineraries))
	for _, it := range itineraries {
		cached = append(cached, cachedItinerary{Legs: it.Legs()})
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(key), payload, c.searchTTL).Err()
}

func searchKey(k SearchKey) string {
	return fmt.Sprintf("cache:search:%s:%s:%d:%d:%t", k.Origin, k.Dest, k.Day, k.Limit, k.DirectOnly)
}
