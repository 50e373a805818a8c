package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	breakerMaxRequests = 1
	breakerTimeout     = 5 * time.Second
	breakerTripAfter   = 3
)

// Redis stores each key as a redis string. Calls pass through a circuit
// breaker so that an unreachable server fails fast instead of stalling every
// mutation for the full dial timeout.
type Redis struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
}

var _ KV = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, logger log.FieldLogger) *Redis {
	if logger == nil {
		logger = log.StandardLogger()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-slot",
		MaxRequests: breakerMaxRequests,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return &Redis{client: client, breaker: cb}
}

// DialRedis connects to addr and wraps the client.
func DialRedis(addr, password string, db int, logger log.FieldLogger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedis(client, logger)
}

// Get returns the string stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.breaker.Execute(func() (interface{}, error) {
		b, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return b, err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v.([]byte), nil
}

// Set stores value under key with no expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, key, value, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// State reports the breaker state, for diagnostics.
func (r *Redis) State() gobreaker.State {
	return r.breaker.State()
}
