package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisPrefix    = "ctfboard:listing:"
	redisGenPrefix = "ctfboard:listing-gen:"
)

var errStaleGeneration = errors.New("listing generation changed")

// Redis stores each page as a hash keyed by variant next to a generation
// counter. Invalidating a page deletes the hash and increments the counter in
// one transaction.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Get implements Listing. The generation is read before the payload.
func (r *Redis) Get(ctx context.Context, path, variant string) (Entry, error) {
	var genCmd *redis.StringCmd
	var dataCmd *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		genCmd = pipe.Get(ctx, redisGenPrefix+path)
		dataCmd = pipe.HGet(ctx, redisPrefix+path, variant)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("reading listing %s: %w", path, err)
	}

	gen, err := generation(genCmd)
	if err != nil {
		return Entry{}, fmt.Errorf("reading listing %s generation: %w", path, err)
	}

	data, err := dataCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{Generation: gen}, nil
		}
		return Entry{}, fmt.Errorf("reading listing %s: %w", path, err)
	}
	return Entry{Data: data, Found: true, Generation: gen}, nil
}

// Set implements Listing. The generation key is watched, so an Invalidate
// landing between the check and the write aborts the transaction. The TTL
// applies to the whole page and is refreshed on every write.
func (r *Redis) Set(ctx context.Context, path, variant string, gen uint64, data []byte) (bool, error) {
	key := redisPrefix + path
	genKey := redisGenPrefix + path

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(tx.Get(ctx, genKey))
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, variant, data)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("writing listing %s: %w", path, err)
	}
}

// Invalidate implements Listing.
func (r *Redis) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range paths {
			pipe.Del(ctx, redisPrefix+p)
			pipe.Incr(ctx, redisGenPrefix+p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating listings: %w", err)
	}
	return nil
}

// Close implements Listing.
func (r *Redis) Close() error {
	return r.client.Close()
}

// generation reads a counter value, treating a missing key as zero.
func generation(cmd *redis.StringCmd) (uint64, error) {
	gen, err := cmd.Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
