package app

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"travel_cms/internal/adapters/observability"
	"travel_cms/internal/domain"
)

// ContentService owns every admin write and the public intake forms.
type ContentService struct {
	store   domain.DocumentStore
	blobs   domain.BlobStore
	cache   domain.Cache
	baseURL string
	html    *bluemonday.Policy
	now     func() time.Time
}

func NewContentService(st domain.DocumentStore, blobs domain.BlobStore, cache domain.Cache, publicBaseURL string) *ContentService {
	return &ContentService{
		store:   st,
		blobs:   blobs,
		cache:   cache,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		html:    bluemonday.UGCPolicy(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func requireAdmin(ac domain.AuthContext) error {
	if !ac.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if !ac.IsAdmin() {
		return domain.ErrNotAuthorized
	}
	return nil
}

func outcome(err error) string {
	var ve domain.ValidationErrors
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrNotAuthorized), errors.Is(err, domain.ErrUnauthenticated):
		return "denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// done records the mutation and, on success, drops the public read cache of coll.
func (s *ContentService) done(ctx context.Context, coll, op string, err error) {
	observability.ObserveMutation(coll, op, outcome(err))
	if err == nil && s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(coll))
	}
}

// reject records a mutation that failed before reaching the store.
func (s *ContentService) reject(ctx context.Context, coll, op string, err error) error {
	s.done(ctx, coll, op, err)
	return err
}

// MediaURL is the public address of an upload.
func MediaURL(baseURL, storageID string) string {
	return baseURL + "/media/" + url.PathEscape(storageID)
}

// resolveImage checks that storageID names a stored upload and returns its reference.
func (s *ContentService) resolveImage(ctx context.Context, storageID string) (domain.ImageRef, error) {
	if storageID == "" {
		return domain.ImageRef{}, domain.ValidationErrors{{Field: "imageId", Message: "Image is required"}}
	}
	if _, err := s.blobs.Stat(ctx, storageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ImageRef{}, domain.ErrImageUnresolvable
		}
		return domain.ImageRef{}, err
	}
	return domain.ImageRef{ImageID: storageID, Image: MediaURL(s.baseURL, storageID)}, nil
}

// releaseImage deletes an upload and its media record. Failures are logged only.
func (s *ContentService) releaseImage(ctx context.Context, coll, docID, storageID string) {
	if storageID == "" {
		return
	}
	if err := s.blobs.Delete(ctx, storageID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Str("collection", coll).Str("id", docID).Str("storage_id", storageID).
			Msg("release upload failed")
	}
	if err := deleteMediaRecord(ctx, s.store, storageID); err != nil {
		log.Warn().Err(err).Str("storage_id", storageID).Msg("delete media record failed")
	}
}

// deleteImageBearing removes an entity and the upload it points to.
func deleteImageBearing[T any](ctx context.Context, s *ContentService, ac domain.AuthContext, coll, id string, ref func(T) domain.ImageRef) (err error) {
	defer func() { s.done(ctx, coll, "delete", err) }()
	if err = requireAdmin(ac); err != nil {
		return err
	}
	v, err := getAs[T](ctx, s.store, coll, id)
	if err != nil {
		return err
	}
	s.releaseImage(ctx, coll, id, ref(v).ImageID)
	return s.store.Delete(ctx, coll, id)
}

func deleteByID(ctx context.Context, s *ContentService, ac domain.AuthContext, coll, id string) (err error) {
	defer func() { s.done(ctx, coll, "delete", err) }()
	if err = requireAdmin(ac); err != nil {
		return err
	}
	return s.store.Delete(ctx, coll, id)
}
