// Package redispkg builds go-redis clients from REDIS_URL-style settings.
package redispkg

import (
	"context"
	"crypto/tls"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const defaultAddr = "redis:6379"

// ParseRedisURL accepts either a plain `host:port` or a `redis://`/`rediss://`
// URL and returns the address, password, database and whether TLS is required.
func ParseRedisURL(raw string) (addr, password string, db int, useTLS bool) {
	if raw == "" {
		return defaultAddr, "", 0, false
	}

	if !strings.HasPrefix(raw, "redis://") && !strings.HasPrefix(raw, "rediss://") {
		return raw, "", 0, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return defaultAddr, "", 0, false
	}
	addr = u.Host
	useTLS = u.Scheme == "rediss"
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			password = pw
		}
	}
	if p := strings.Trim(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	return addr, password, db, useTLS
}

// NewClient builds a redis client from raw and attaches hooks. It disables
// maintnotifications to avoid handshake attempts on servers that don't
// implement the subcommand.
func NewClient(raw string, hooks ...redis.Hook) *redis.Client {
	addr, password, db, useTLS := ParseRedisURL(raw)

	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	client := redis.NewClient(opts)
	for _, h := range hooks {
		client.AddHook(h)
	}
	return client
}

// ErrorHook reports failed commands, ignoring redis.Nil misses.
type ErrorHook struct {
	OnError func(command string)
}

func (h ErrorHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h ErrorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) && h.OnError != nil {
			h.OnError(cmd.Name())
		}
		return err
	}
}

func (h ErrorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) && h.OnError != nil {
			h.OnError("pipeline")
		}
		return err
	}
}
