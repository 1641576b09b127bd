package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gameghor/internal/config"
	"gameghor/internal/models"

	"github.com/go-redis/redis/v8"
)

// Store persists the signed-in identity between runs.
type Store interface {
	// Load returns the stored identity, or the anonymous identity when
	// nothing is stored.
	Load(ctx context.Context) (models.Identity, error)
	Save(ctx context.Context, identity models.Identity) error
	Clear(ctx context.Context) error
}

// FileStore keeps the identity as JSON in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (models.Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Anonymous(), nil
	}
	if err != nil {
		return models.Anonymous(), fmt.Errorf("read session file: %w", err)
	}
	return decodeIdentity(data)
}

func (s *FileStore) Save(_ context.Context, identity models.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

const (
	DefaultRedisPrefix = "gameghor:session:"
	DefaultRedisTTL    = 24 * time.Hour
)

// RedisStore keeps the identity under a single Redis key so several
// processes on one account share the session.
type RedisStore struct {
	client *redis.Client
	key    string
	prefix string
	ttl    time.Duration
}

// RedisStoreOption customizes a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithTTL sets how long a stored session lives. Zero keeps it until logout.
func WithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store for the session named name.
func NewRedisStore(client *redis.Client, name string, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
		ttl:    DefaultRedisTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.key = s.prefix + name
	return s
}

func (s *RedisStore) Load(ctx context.Context) (models.Identity, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return models.Anonymous(), nil
	}
	if err != nil {
		return models.Anonymous(), fmt.Errorf("load session %s: %w", s.key, err)
	}
	return decodeIdentity(val)
}

func (s *RedisStore) Save(ctx context.Context, identity models.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", s.key, err)
	}
	return nil
}

// MemoryStore keeps the identity in process memory only.
type MemoryStore struct {
	mu       sync.Mutex
	identity models.Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{identity: models.Anonymous()}
}

func (s *MemoryStore) Load(_ context.Context) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, nil
}

func (s *MemoryStore) Save(_ context.Context, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.Anonymous()
	return nil
}

func decodeIdentity(data []byte) (models.Identity, error) {
	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return models.Anonymous(), fmt.Errorf("decode session: %w", err)
	}
	if identity.Token == "" {
		return models.Anonymous(), nil
	}
	return identity, nil
}

// OpenStore builds the store selected by cfg.SessionStore ("file", "redis"
// or "memory"). The returned close function releases any connection.
func OpenStore(ctx context.Context, cfg config.ClientConfig) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.SessionStore {
	case "", "file":
		return NewFileStore(cfg.SessionFile), noop, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return NewRedisStore(client, storeName(cfg.BaseURL), WithPrefix(prefix)), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func storeName(baseURL string) string {
	user := os.Getenv("USER")
	if user == "" {
		user = "default"
	}
	return user + "@" + baseURL
}
