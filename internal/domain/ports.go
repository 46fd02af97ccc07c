package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Document is one stored record of a collection. Body is the entity as JSON.
type Document struct {
	ID        string
	Slug      string // empty for collections without slugs
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DocumentStore interface {
	// Insert assigns ID and timestamps when they are zero.
	Insert(ctx context.Context, coll string, d Document) (Document, error)
	Get(ctx context.Context, coll, id string) (Document, error)
	FindBySlug(ctx context.Context, coll, slug string) (Document, error)
	// List returns documents oldest first.
	List(ctx context.Context, coll string) ([]Document, error)
	// Replace swaps the body and slug of an existing document; CreatedAt is kept.
	Replace(ctx context.Context, coll string, d Document) (Document, error)
	Delete(ctx context.Context, coll, id string) error
	// Atomic runs fn so that reads made through tx are not invalidated by
	// concurrent writers before fn returns.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx DocumentStore) error) error
}

type UserDirectory interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SetUserRole(ctx context.Context, id string, role Option[Role]) (User, error)
}

type BlobInfo struct {
	ID          string
	ContentType string
	Size        int64
}

type BlobStore interface {
	Put(ctx context.Context, id, contentType string, r io.Reader) (BlobInfo, error)
	Stat(ctx context.Context, id string) (BlobInfo, error)
	Open(ctx context.Context, id string) (io.ReadCloser, BlobInfo, error)
	Delete(ctx context.Context, id string) error
}

// UploadTickets tracks one-shot upload targets.
type UploadTickets interface {
	Issue(ctx context.Context, token string, ttl time.Duration) error
	// Consume reports whether the token existed; it is gone afterwards.
	Consume(ctx context.Context, token string) (bool, error)
}

type Sessions interface {
	Issue(u User) (token string, expires time.Time, err error)
	Verify(token string) (Principal, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
