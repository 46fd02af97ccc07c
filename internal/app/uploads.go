package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"travel_cms/internal/adapters/observability"
	"travel_cms/internal/domain"
)

const sniffLen = 64 << 10

// rasterTypes are the formats with a registered decoder. Scriptable formats
// such as SVG would be served from the API origin, so they are refused.
var rasterTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadTarget is handed to an admin client before it pushes bytes.
type UploadTarget struct {
	UploadURL string    `json:"uploadUrl"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadService struct {
	store   domain.DocumentStore
	blobs   domain.BlobStore
	tickets domain.UploadTickets
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewUploadService(st domain.DocumentStore, blobs domain.BlobStore, tickets domain.UploadTickets, publicBaseURL string, ttl time.Duration) *UploadService {
	return &UploadService{
		store:   st,
		blobs:   blobs,
		tickets: tickets,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RequestTarget issues a one-shot upload ticket.
func (u *UploadService) RequestTarget(ctx context.Context, ac domain.AuthContext) (UploadTarget, error) {
	if err := requireAdmin(ac); err != nil {
		return UploadTarget{}, err
	}
	token := uuid.NewString()
	if err := u.tickets.Issue(ctx, token, u.ttl); err != nil {
		return UploadTarget{}, fmt.Errorf("issue upload ticket: %w", err)
	}
	return UploadTarget{
		UploadURL: u.baseURL + "/v1/uploads/" + token,
		Token:     token,
		ExpiresAt: u.now().Add(u.ttl),
	}, nil
}

// Accept consumes the ticket and stores the pushed image.
func (u *UploadService) Accept(ctx context.Context, token, contentType string, body io.Reader) (domain.Media, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !rasterTypes[mt] {
		return domain.Media{}, domain.ErrUnsupportedMedia
	}
	ok, err := u.tickets.Consume(ctx, token)
	if err != nil {
		return domain.Media{}, fmt.Errorf("consume upload ticket: %w", err)
	}
	if !ok {
		return domain.Media{}, domain.ErrUploadTicket
	}

	br := bufio.NewReaderSize(body, sniffLen)
	m := domain.Media{ContentType: mt}
	// Width and height come from the header only; a miss just leaves them unset.
	if head, _ := br.Peek(sniffLen); len(head) > 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(head)); err == nil {
			m.Width, m.Height = domain.Some(cfg.Width), domain.Some(cfg.Height)
		}
	}

	id := uuid.NewString()
	info, err := u.blobs.Put(ctx, id, mt, br)
	if err != nil {
		return domain.Media{}, fmt.Errorf("store upload: %w", err)
	}
	m.StorageID, m.Size = info.ID, info.Size
	observability.ObserveUpload(info.Size)

	out, err := insertAs(ctx, u.store, domain.CollMedia, info.ID, m)
	if err != nil {
		_ = u.blobs.Delete(ctx, info.ID)
		return domain.Media{}, err
	}
	return out, nil
}

// Open streams a stored upload for the public media route.
func (u *UploadService) Open(ctx context.Context, storageID string) (io.ReadCloser, domain.BlobInfo, error) {
	return u.blobs.Open(ctx, storageID)
}

// deleteMediaRecord drops the media record keyed by storageID, if any.
func deleteMediaRecord(ctx context.Context, st domain.DocumentStore, storageID string) error {
	d, err := st.FindBySlug(ctx, domain.CollMedia, storageID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return st.Delete(ctx, domain.CollMedia, d.ID)
}
