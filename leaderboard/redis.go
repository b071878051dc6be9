package leaderboard

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKey = "termtris:leaderboard"
	redisRetries    = 3
)

type RedisOptions struct {
	Addr     string
	Username string
	Password string
	TLS      bool
	// Key holds the whole leaderboard as a JSON array.
	Key         string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// Redis shares the leaderboard between machines through a single Redis key. Concurrent
// saves are serialized with WATCH.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
	logger *slog.Logger
}

func NewRedis(o RedisOptions, l *slog.Logger) *Redis {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Key == "" {
		o.Key = defaultRedisKey
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 1500 * time.Millisecond
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 500 * time.Millisecond
	}

	ro := &redis.Options{
		Addr:         o.Addr,
		Username:     o.Username,
		Password:     o.Password,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.ReadTimeout,
		MaxRetries:   1,
	}
	if o.TLS {
		host, _, err := net.SplitHostPort(o.Addr)
		if err != nil {
			host = o.Addr
		}
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}
	return &Redis{client: redis.NewClient(ro), opts: o, logger: l}
}

func (r *Redis) Name() string {
	scheme := "redis"
	if r.opts.TLS {
		scheme = "rediss"
	}
	user := r.opts.Username
	if user == "" {
		user = "default"
	}
	return fmt.Sprintf("Redis (%s://%s@%s)", scheme, user, r.opts.Addr)
}

func (r *Redis) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	r.logger.Debug("connected to redis", slog.String("addr", r.opts.Addr))
	return nil
}

func (r *Redis) Save(ctx context.Context, e Entry) error {
	save := func(tx *redis.Tx) error {
		entries, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		b, err := json.Marshal(insert(entries, e))
		if err != nil {
			return fmt.Errorf("encoding leaderboard: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, r.opts.Key, b, 0)
			return nil
		})
		return err
	}

	for range redisRetries {
		err := r.client.Watch(ctx, save, r.opts.Key)
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug("leaderboard changed while saving, retrying")
			continue
		}
		return err
	}
	return fmt.Errorf("saving entry: %w", redis.TxFailedErr)
}

func (r *Redis) Top(ctx context.Context) ([]Entry, error) {
	return r.load(ctx, r.client)
}

func (r *Redis) load(ctx context.Context, c redis.Cmdable) ([]Entry, error) {
	b, err := c.Get(ctx, r.opts.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.opts.Key, err)
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		r.logger.Warn("corrupted leaderboard in redis, ignoring it", slog.String("error", err.Error()))
		return nil, nil
	}
	return Rank(entries), nil
}

func (r *Redis) Close() error { return r.client.Close() }
