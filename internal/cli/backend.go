// Package cli wires configuration into the stores, sessions and editors the
// easel commands run on.
package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/adapters/file"
	"github.com/aretw0/easel/internal/config"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/adapters/memory"
	redisadapter "github.com/aretw0/easel/pkg/adapters/redis"
	"github.com/aretw0/easel/pkg/adapters/sqlite"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/persistence/middleware"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/session"
	"github.com/redis/go-redis/v9"
)

// Backend is the persistence selected by the store section of a config.
type Backend struct {
	Store ports.DocumentStore
	// Locker is set for drivers shared between processes.
	Locker  ports.DistributedLocker
	closers []func() error
}

// OpenBackend opens the configured store and wraps it with the configured
// redaction and encryption.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	b, err := openDriver(cfg.Store)
	if err != nil {
		return nil, err
	}
	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

func storeMiddleware(s config.Store) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(s.Redact) > 0 {
		redact, err := middleware.NewPIIMiddleware(s.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}
	if s.EncryptionKey == "" {
		return mws, nil
	}

	enc := middleware.EncryptionConfig{}
	for i, encoded := range append([]string{s.EncryptionKey}, s.FallbackKeys...) {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("encryption key %d is not valid base64: %w", i, err)
		}
		if i == 0 {
			enc.ActiveKey = key
		} else {
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
	}
	seal, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, seal), nil
}

func openDriver(s config.Store) (*Backend, error) {
	switch s.Driver {
	case config.DriverMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.DriverFile:
		return &Backend{Store: file.New(s.Dir, file.Format(s.Format))}, nil
	case config.DriverSQLite:
		if dir := filepath.Dir(s.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		store, err := sqlite.Open(s.DSN)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, closers: []func() error{store.Close}}, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: s.Addr})
		var opts []redisadapter.Option
		lockPrefix := "easel:lock:"
		if s.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(s.Prefix))
			lockPrefix = s.Prefix + "lock:"
		}
		if s.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(s.TTL))
		}
		store := redisadapter.NewFromClient(client, opts...)
		return &Backend{
			Store:   store,
			Locker:  redisadapter.NewLocker(client, lockPrefix),
			closers: []func() error{store.Close},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", s.Driver)
}

// Close releases the store connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Sessions builds a session manager over the backend. Editors it opens carry
// the configured editor options plus hooks.
func (b *Backend) Sessions(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEditorOptions(EditorOptions(cfg, logger, hooks)...),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	if cfg.Server.LockTTL > 0 {
		opts = append(opts, session.WithLockTTL(cfg.Server.LockTTL))
	}
	return session.NewManager(b.Store, opts...)
}

// EditorOptions returns the configured editor options with logging and hooks.
func EditorOptions(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) []easel.Option {
	return append(cfg.EditorOptions(), easel.WithLogger(logger), easel.WithLifecycleHooks(hooks))
}

// NewLogger builds the logger described by the log section.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, level, cfg.Log.JSON), nil
}
