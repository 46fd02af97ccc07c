package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel_cms/internal/domain"
)

var (
	admin  = domain.Authenticated(domain.Principal{UserID: "u-admin", Email: "admin@example.com", Role: domain.Some(domain.RoleAdmin)})
	member = domain.Authenticated(domain.Principal{UserID: "u-member", Email: "member@example.com"})
)

// ---- blobs ----

type fakeBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	ctype   map[string]string
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}, ctype: map[string]string{}}
}

// seed stores a blob directly and returns its id.
func (f *fakeBlobs) seed() string {
	id := uuid.NewString()
	f.mu.Lock()
	f.data[id] = []byte("img")
	f.ctype[id] = "image/png"
	f.mu.Unlock()
	return id
}

func (f *fakeBlobs) Put(ctx context.Context, id, contentType string, r io.Reader) (domain.BlobInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[id], f.ctype[id] = b, contentType
	return domain.BlobInfo{ID: id, ContentType: contentType, Size: int64(len(b))}, nil
}

func (f *fakeBlobs) Stat(ctx context.Context, id string) (domain.BlobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[id]
	if !ok {
		return domain.BlobInfo{}, domain.ErrNotFound
	}
	return domain.BlobInfo{ID: id, ContentType: f.ctype[id], Size: int64(len(b))}, nil
}

func (f *fakeBlobs) Open(ctx context.Context, id string) (io.ReadCloser, domain.BlobInfo, error) {
	info, err := f.Stat(ctx, id)
	if err != nil {
		return nil, info, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(f.data[id])), info, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.data, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// ---- cache ----

// fakeCache keeps JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- tickets ----

type fakeTickets struct {
	live map[string]time.Duration
}

func (t *fakeTickets) Issue(ctx context.Context, token string, ttl time.Duration) error {
	if t.live == nil {
		t.live = map[string]time.Duration{}
	}
	t.live[token] = ttl
	return nil
}

func (t *fakeTickets) Consume(ctx context.Context, token string) (bool, error) {
	_, ok := t.live[token]
	delete(t.live, token)
	return ok, nil
}

// ---- sessions ----

type fakeSessions struct{}

func (fakeSessions) Issue(u domain.User) (string, time.Time, error) {
	return "tok-" + u.ID, time.Now().Add(time.Hour), nil
}

func (fakeSessions) Verify(token string) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrUnauthenticated
}
