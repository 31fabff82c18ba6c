package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/query"
)

// Cache holds normalized search results per criteria. Purely an ephemeral
// read-through layer; the flight service stays the source of truth.
type Cache interface {
	Get(ctx context.Context, criteria models.SearchCriteria) ([]models.Flight, bool)
	Set(ctx context.Context, criteria models.SearchCriteria, flights []models.Flight) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, criteria models.SearchCriteria) ([]models.Flight, bool) {
	data, err := c.client.Get(ctx, generateKey(criteria)).Bytes()
	if err != nil {
		return nil, false
	}

	var flights []models.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false
	}

	return flights, true
}

func (c *RedisCache) Set(ctx context.Context, criteria models.SearchCriteria, flights []models.Flight) error {
	data, err := json.Marshal(flights)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(criteria), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, criteria models.SearchCriteria) ([]models.Flight, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, criteria models.SearchCriteria, flights []models.Flight) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// generateKey hashes the canonical query-string encoding of the criteria.
// The codec's stable key order makes equal criteria hash identically.
func generateKey(criteria models.SearchCriteria) string {
	hash := sha256.Sum256([]byte(query.Encode(criteria)))
	return "flight:" + hex.EncodeToString(hash[:])
}
