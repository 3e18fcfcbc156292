package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/gtostat/internal/app/models"
)

const standingsKeyPrefix = "gto:standings:"

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// StandingsCache keeps per-institute tallies of a year in Redis
type StandingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient opens a client and checks the connection
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// NewStandingsCache wraps an open client
func NewStandingsCache(client *redis.Client, ttl time.Duration) *StandingsCache {
	return &StandingsCache{
		client: client,
		ttl:    ttl,
	}
}

func standingsKey(year int) string {
	return standingsKeyPrefix + strconv.Itoa(year)
}

// Get returns the cached standings of a year; ok is false on a miss
func (c *StandingsCache) Get(ctx context.Context, year int) ([]models.InstituteTally, bool, error) {
	data, err := c.client.Get(ctx, standingsKey(year)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("standings cache get: %w", err)
	}

	var standings []models.InstituteTally
	if err := json.Unmarshal(data, &standings); err != nil {
		return nil, false, fmt.Errorf("standings cache decode: %w", err)
	}

	return standings, true, nil
}

// Set stores the standings of a year for the configured TTL
func (c *StandingsCache) Set(ctx context.Context, year int, standings []models.InstituteTally) error {
	data, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("standings cache encode: %w", err)
	}

	if err := c.client.Set(ctx, standingsKey(year), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("standings cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached standings of a year
func (c *StandingsCache) Invalidate(ctx context.Context, year int) error {
	if err := c.client.Del(ctx, standingsKey(year)).Err(); err != nil {
		return fmt.Errorf("standings cache invalidate: %w", err)
	}
	return nil
}
