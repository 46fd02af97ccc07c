package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel_cms/internal/domain"
	"travel_cms/internal/slug"
)

// metaSetter is implemented by every entity through its embedded domain.Meta.
type metaSetter interface {
	SetMeta(id string, createdAt time.Time)
}

func encode(v any, sl string) (domain.Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode document: %w", err)
	}
	return domain.Document{Slug: sl, Body: b}, nil
}

func decode[T any](d domain.Document) (T, error) {
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return v, fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	if m, ok := any(&v).(metaSetter); ok {
		m.SetMeta(d.ID, d.CreatedAt)
	}
	return v, nil
}

func getAs[T any](ctx context.Context, st domain.DocumentStore, coll, id string) (T, error) {
	d, err := st.Get(ctx, coll, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](d)
}

func bySlugAs[T any](ctx context.Context, st domain.DocumentStore, coll, s string) (T, error) {
	d, err := st.FindBySlug(ctx, coll, s)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](d)
}

func listAs[T any](ctx context.Context, st domain.DocumentStore, coll string) ([]T, error) {
	docs, err := st.List(ctx, coll)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// insertAs stores v and returns it with the store-assigned identity.
func insertAs[T any](ctx context.Context, st domain.DocumentStore, coll, sl string, v T) (T, error) {
	d, err := encode(v, sl)
	if err != nil {
		return v, err
	}
	d, err = st.Insert(ctx, coll, d)
	if err != nil {
		return v, err
	}
	if m, ok := any(&v).(metaSetter); ok {
		m.SetMeta(d.ID, d.CreatedAt)
	}
	return v, nil
}

func replaceAs[T any](ctx context.Context, st domain.DocumentStore, coll, id, sl string, v T) (T, error) {
	d, err := encode(v, sl)
	if err != nil {
		return v, err
	}
	d.ID = id
	d, err = st.Replace(ctx, coll, d)
	if err != nil {
		return v, err
	}
	if m, ok := any(&v).(metaSetter); ok {
		m.SetMeta(d.ID, d.CreatedAt)
	}
	return v, nil
}

// uniqueSlug scans every document of coll except self.
func uniqueSlug(ctx context.Context, st domain.DocumentStore, coll, base, self string) (string, error) {
	docs, err := st.List(ctx, coll)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.ID != self && d.Slug != "" {
			taken[d.Slug] = struct{}{}
		}
	}
	return slug.Unique(base, func(s string) bool {
		_, ok := taken[s]
		return ok
	}), nil
}
