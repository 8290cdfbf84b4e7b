package storefront

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// Fixed keys of the guest blob.
const (
	CartKey        = "attire_cart"
	WishlistKey    = "attire_wishlist"
	WishlistNewKey = "attire_wishlist_new"
)

// ErrBlobNotFound is returned by Load when nothing is stored under the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the durable key/value store backing a guest session.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryBlob keeps blobs in process memory.
type MemoryBlob struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: map[string][]byte{}}
}

func (m *MemoryBlob) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlob) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBlob) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileBlob stores each key as <dir>/<key>.json.
type FileBlob struct {
	dir string
}

// NewFileBlob creates the directory if needed.
func NewFileBlob(dir string) (*FileBlob, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FileBlob{dir: dir}, nil
}

func (f *FileBlob) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key)+".json")
}

func (f *FileBlob) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

// Save replaces the file atomically.
func (f *FileBlob) Save(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileBlob) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type guestRedis interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	GuestBlobKey(guestID, name string) string
}

// RedisBlob namespaces a guest's blob keys under their guest id. Every save
// refreshes the TTL.
type RedisBlob struct {
	client  guestRedis
	guestID string
	ttl     time.Duration
}

func NewRedisBlob(client guestRedis, guestID string, ttl time.Duration) (*RedisBlob, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if strings.TrimSpace(guestID) == "" {
		return nil, fmt.Errorf("guest id is required")
	}
	return &RedisBlob{client: client, guestID: guestID, ttl: ttl}, nil
}

func (r *RedisBlob) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.client.GuestBlobKey(r.guestID, key))
	if errors.Is(err, redislib.Nil) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (r *RedisBlob) Save(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.GuestBlobKey(r.guestID, key), string(value), r.ttl)
}

func (r *RedisBlob) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.GuestBlobKey(r.guestID, key))
}
