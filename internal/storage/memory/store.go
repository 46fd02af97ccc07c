// Package memory is a process-local DocumentStore and UserDirectory used for
// local development (STORE_DRIVER=memory) and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel_cms/internal/domain"
)

type Store struct {
	tx sync.Mutex // serializes Atomic blocks

	mu    sync.RWMutex
	docs  map[string][]domain.Document
	users map[string]domain.User
	now   func() time.Time
}

func New() *Store {
	return &Store{
		docs:  map[string][]domain.Document{},
		users: map[string]domain.User{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Insert(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.UpdatedAt = d.CreatedAt
	for _, x := range s.docs[coll] {
		if x.ID == d.ID || (d.Slug != "" && x.Slug == d.Slug) {
			return domain.Document{}, domain.ErrConflict
		}
	}
	d.Body = append([]byte(nil), d.Body...)
	s.docs[coll] = append(s.docs[coll], d)
	return d, nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs[coll] {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Document{}, domain.ErrNotFound
}

func (s *Store) FindBySlug(ctx context.Context, coll, slug string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs[coll] {
		if slug != "" && d.Slug == slug {
			return d, nil
		}
	}
	return domain.Document{}, domain.ErrNotFound
}

func (s *Store) List(ctx context.Context, coll string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, len(s.docs[coll]))
	copy(out, s.docs[coll])
	return out, nil
}

func (s *Store) Replace(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.docs[coll]
	idx := -1
	for i, x := range docs {
		if x.ID == d.ID {
			idx = i
			continue
		}
		if d.Slug != "" && x.Slug == d.Slug {
			return domain.Document{}, domain.ErrConflict
		}
	}
	if idx < 0 {
		return domain.Document{}, domain.ErrNotFound
	}
	d.CreatedAt = docs[idx].CreatedAt
	d.UpdatedAt = s.now()
	d.Body = append([]byte(nil), d.Body...)
	docs[idx] = d
	return d, nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.docs[coll]
	for i, d := range docs {
		if d.ID == id {
			s.docs[coll] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	return fn(ctx, s)
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, x := range s.users {
		if x.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) SetUserRole(ctx context.Context, id string, role domain.Option[domain.Role]) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return u, nil
}
