package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/arcty/pkg/adapters/file"
	"github.com/aretw0/arcty/pkg/adapters/memory"
	"github.com/aretw0/arcty/pkg/adapters/redis"
	"github.com/aretw0/arcty/pkg/adapters/sqlite"
	"github.com/aretw0/arcty/pkg/persistence/middleware"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/aretw0/arcty/pkg/session"
)

const (
	// EnvEncryptionKey holds a base64 AES-256 key. When set, transcripts
	// are encrypted at rest.
	EnvEncryptionKey = "ARCTY_ENCRYPTION_KEY"
	// EnvFallbackKeys holds comma-separated base64 keys still accepted for
	// decryption during a rotation.
	EnvFallbackKeys = "ARCTY_ENCRYPTION_FALLBACK_KEYS"
)

// ErrUnknownStore is returned for a --store value no adapter understands.
var ErrUnknownStore = errors.New("unknown store")

// ErrInvalidKey is returned when an encryption key is not 32 bytes of base64.
var ErrInvalidKey = errors.New("invalid encryption key")

// OpenSessions builds the session manager behind --store:
//
//	file         JSON files in .arcty/sessions (default)
//	file:DIR     JSON files in DIR
//	memory       kept for the life of the process
//	redis://...  Redis, with a distributed lock per session
//	sqlite:PATH  a SQLite database
//
// The returned func releases the store.
func OpenSessions(cfg Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, locker, err := openStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() error {
		if c, ok := store.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}

	var mws []middleware.Middleware
	if cfg.Redact {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	enc, err := encryptionFromEnv()
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	if enc != nil {
		logger.Debug("transcripts encrypted at rest", "fallback_keys", len(enc.FallbackKeys))
		mws = append(mws, middleware.NewEncryptionMiddleware(*enc))
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(middleware.Chain(store, mws...), opts...), closeStore, nil
}

func openStore(spec string) (ports.StateStore, ports.DistributedLocker, error) {
	switch {
	case spec == "" || spec == "file":
		return file.New(""), nil, nil
	case strings.HasPrefix(spec, "file:"):
		return file.New(strings.TrimPrefix(spec, "file:")), nil, nil
	case spec == "memory":
		return memory.NewStore(), nil, nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		store, err := redis.NewFromURL(spec)
		if err != nil {
			return nil, nil, err
		}
		return store, redis.NewLocker(store.Client(), redis.DefaultPrefix), nil
	case strings.HasPrefix(spec, "sqlite:"):
		path := strings.TrimPrefix(spec, "sqlite:")
		if path == "" {
			return nil, nil, fmt.Errorf("%w: sqlite needs a path (sqlite:PATH)", ErrUnknownStore)
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q (use file, file:DIR, memory, redis://... or sqlite:PATH)", ErrUnknownStore, spec)
	}
}

// encryptionFromEnv returns nil when no key is configured.
func encryptionFromEnv() (*middleware.EncryptionConfig, error) {
	raw := os.Getenv(EnvEncryptionKey)
	if raw == "" {
		return nil, nil
	}
	active, err := decodeKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvEncryptionKey, err)
	}

	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for _, s := range strings.Split(os.Getenv(EnvFallbackKeys), ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		key, err := decodeKey(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvFallbackKeys, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes, want 32", ErrInvalidKey, len(key))
	}
	return key, nil
}
