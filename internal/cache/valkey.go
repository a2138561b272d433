// Package cache provides the Valkey (Redis-compatible) client and caching
// of public API responses.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions describes how to reach Valkey.
type ValkeyOptions struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout bounds both the dial and the startup ping.
	DialTimeout time.Duration
}

func (o ValkeyOptions) client() *redis.Options {
	timeout := o.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  timeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// ConnectValkey dials Valkey and pings it. The client is closed on failure.
func ConnectValkey(ctx context.Context, opts ValkeyOptions) (*redis.Client, error) {
	ro := opts.client()
	client := redis.NewClient(ro)

	pingCtx, cancel := context.WithTimeout(ctx, ro.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr, err)
	}

	slog.Info("valkey connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
