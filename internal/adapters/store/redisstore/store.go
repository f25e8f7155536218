// Package redisstore persists widget collections in Redis. All widgets are
// stored under one key as a JSON array, mirroring the single-blob storage
// model of the embeddable widget.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/testimonialhq/widget-service/internal/domain"
)

// widgetsKey holds the serialized widget collection.
const widgetsKey = "testimonials:widgets"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConnectTimeout bounds the total time Connect spends retrying.
	ConnectTimeout time.Duration

	// RetryInterval is the initial wait between connection attempts; it
	// doubles per attempt up to MaxWait.
	RetryInterval time.Duration
	MaxWait       time.Duration
	PingTimeout   time.Duration
}

// Store is a ports.WidgetRepository backed by Redis.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// Connect dials Redis with exponential backoff and returns a store once a
// ping succeeds. It fails when ConnectTimeout elapses first.
func Connect(opts Options, logger *slog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	wait := opts.RetryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			logger.Info("connected to redis",
				slog.String("addr", opts.Addr),
				slog.Int("attempt", attempt),
			)

			return New(client, logger), nil
		}

		logger.Warn("redis connection attempt failed",
			slog.String("addr", opts.Addr),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
		case <-time.After(wait):
		}

		wait *= 2
		if wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
}

// New wraps an existing client; Connect is the usual entry point.
func New(client *redis.Client, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		logger: logger.With(slog.String("component", "redisstore")),
	}
}

// LoadAll returns every stored widget. A missing key is an empty collection.
func (s *Store) LoadAll(ctx context.Context) ([]domain.Widget, error) {
	raw, err := s.client.Get(ctx, widgetsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewUnavailableError("redis", err.Error())
	}

	widgets, err := decodeWidgets(raw)
	if err != nil {
		// A corrupt blob is unrecoverable; surface it rather than
		// silently dropping stored data.
		return nil, fmt.Errorf("decoding widget blob: %w", err)
	}

	return widgets, nil
}

// SaveAll replaces the stored collection.
func (s *Store) SaveAll(ctx context.Context, widgets []domain.Widget) error {
	raw, err := encodeWidgets(widgets)
	if err != nil {
		return fmt.Errorf("encoding widget blob: %w", err)
	}

	err = s.client.Set(ctx, widgetsKey, raw, 0).Err()
	if err != nil {
		return domain.NewUnavailableError("redis", err.Error())
	}

	return nil
}

// Clear deletes the stored collection.
func (s *Store) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, widgetsKey).Err()
	if err != nil {
		return domain.NewUnavailableError("redis", err.Error())
	}

	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "redis"
}

// Check implements ports.HealthChecker by pinging the server.
func (s *Store) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func encodeWidgets(widgets []domain.Widget) ([]byte, error) {
	if widgets == nil {
		widgets = []domain.Widget{}
	}

	return json.Marshal(widgets)
}

func decodeWidgets(raw []byte) ([]domain.Widget, error) {
	var widgets []domain.Widget

	err := json.Unmarshal(raw, &widgets)
	if err != nil {
		return nil, err
	}

	return widgets, nil
}
