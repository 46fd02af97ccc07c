// Package cmsclient talks to the CMS HTTP API as an admin: sign-in, uploads and content writes.
package cmsclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"travel_cms/internal/adapters/observability"
	"travel_cms/internal/app"
	"travel_cms/internal/domain"
	"travel_cms/internal/imaging"
)

const maxAttempts = 4

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter

	mu    sync.RWMutex
	token string
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("CMS base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// APIError is a non-2xx answer. Message is already cleaned for display.
type APIError struct {
	Status  int
	Message string
	Fields  []domain.FieldError
}

func (e *APIError) Error() string { return fmt.Sprintf("cms %d: %s", e.Status, e.Message) }

// Unwrap lets callers match on the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case http.StatusForbidden:
		return domain.ErrNotAuthorized
	case http.StatusGone:
		return domain.ErrUploadTicket
	case http.StatusUnsupportedMediaType:
		return domain.ErrUnsupportedMedia
	case http.StatusUnprocessableEntity:
		return domain.ErrImageUnresolvable
	case http.StatusBadRequest:
		if len(e.Fields) > 0 {
			return domain.ValidationErrors(e.Fields)
		}
	}
	return nil
}

// ---- Public API ----

func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var s app.Session
	err := c.do(ctx, http.MethodPost, c.base+"/v1/auth/sign-in", "application/json",
		mustJSON(app.Credentials{Email: email, Password: password}), &s)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	c.mu.Lock()
	c.token = s.Token
	c.mu.Unlock()
	return nil
}

func (c *Client) RequestUploadTarget(ctx context.Context) (app.UploadTarget, error) {
	var t app.UploadTarget
	return t, c.do(ctx, http.MethodPost, c.base+"/v1/admin/uploads", "", nil, &t)
}

// Push sends bytes to a target obtained from RequestUploadTarget and returns the storage id.
func (c *Client) Push(ctx context.Context, t app.UploadTarget, contentType string, data []byte) (string, error) {
	var out struct {
		StorageID string `json:"storageId"`
	}
	if err := c.do(ctx, http.MethodPost, t.UploadURL, contentType, data, &out); err != nil {
		return "", err
	}
	return out.StorageID, nil
}

type Uploaded struct {
	StorageID string
	Image     imaging.Result
}

// UploadImage runs the whole pipeline: compress, request a target, push.
func (c *Client) UploadImage(ctx context.Context, data []byte, contentType string) (Uploaded, error) {
	res := imaging.Compress(data, contentType, imaging.Defaults)
	t, err := c.RequestUploadTarget(ctx)
	if err != nil {
		return Uploaded{Image: res}, fmt.Errorf("upload failed: %w", err)
	}
	id, err := c.Push(ctx, t, res.ContentType, res.Data)
	if err != nil {
		return Uploaded{Image: res}, fmt.Errorf("upload failed: %w", err)
	}
	return Uploaded{StorageID: id, Image: res}, nil
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, c.base+path, "application/json", mustJSON(in), out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, c.base+path, "application/json", mustJSON(in), out)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, c.base+path, "", nil, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, c.base+path, "", nil, nil)
}

// ---- Internals ----

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("cmsclient: marshal %T: %v", v, err))
	}
	return b
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// do sends one request with client-side rate limiting and decodes a JSON answer into out.
// 429 is retried for every method; network errors and transient 5xx only for idempotent ones.
func (c *Client) do(ctx context.Context, method, url, contentType string, body []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	endpoint := strings.TrimPrefix(url, c.base)
	if i := strings.LastIndex(endpoint, "/uploads/"); i >= 0 {
		endpoint = endpoint[:i] + "/uploads/{token}"
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "travel-cms-seed/1.0")
		c.mu.RLock()
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		c.mu.RUnlock()

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("cms", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if idempotent(method) && i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("cms", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var err error
			if out != nil {
				err = json.NewDecoder(resp.Body).Decode(out)
			}
			resp.Body.Close()
			return err

		case resp.StatusCode == http.StatusTooManyRequests,
			idempotent(method) && transient(resp.StatusCode):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			lastErr = readAPIError(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return readAPIError(resp)
		}
	}
	return lastErr
}

func transient(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// readAPIError drains resp and turns a problem body into an APIError.
func readAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
	e := &APIError{Status: resp.StatusCode}
	var p struct {
		Title  string              `json:"title"`
		Detail string              `json:"detail"`
		Errors []domain.FieldError `json:"errors"`
	}
	raw := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &p) == nil {
		e.Fields = p.Errors
		raw = p.Detail
		if raw == "" {
			raw = p.Title
		}
	}
	e.Message = app.CleanMessage(raw)
	return e
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

// IsValidation reports whether err carries field errors from the server.
func IsValidation(err error) bool {
	var ve domain.ValidationErrors
	return errors.As(err, &ve)
}
