package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travel_cms/internal/app"
	"travel_cms/internal/domain"
)

const maxJSONBody = 1 << 20

type Handlers struct {
	Content  *app.ContentService
	Query    *app.QueryService
	Uploads  *app.UploadService
	Accounts *app.AccountService
	Sessions domain.Sessions

	MaxUploadBytes int64
	SecureCookies  bool
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/media/{storageId}", h.media)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(h.Sessions, h.Accounts))

		r.Get("/company-info", h.companyInfo)
		r.Get("/socials", h.socials)
		r.Get("/about/hero", h.aboutHero)
		r.Get("/about/who-we-are", h.whoWeAre)
		r.Get("/about/what-we-offer", h.whatWeOffer)
		r.Get("/about/our-strength", h.ourStrength)
		r.Get("/about/why-choose-us", h.whyChooseUs)
		r.Get("/carousel", h.carousel)
		r.Get("/packages", h.packages)
		r.Get("/services", h.services)
		r.Get("/services/{slug}", h.service)
		r.Get("/blog", h.blog)
		r.Get("/blog/{slug}", h.blogPost)
		r.Get("/pages", h.pages)
		r.Get("/pages/{slug}", h.page)

		r.Post("/contact", h.submitContact)
		r.Post("/bookings", h.submitBooking)
		r.Post("/uploads/{token}", h.acceptUpload)

		r.Post("/auth/sign-up", h.signUp)
		r.Post("/auth/sign-in", h.signIn)
		r.Post("/auth/sign-out", h.signOut)
		r.Get("/auth/me", h.me)

		r.Route("/admin", h.mountAdmin)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// fail maps a use-case error onto a problem response.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve domain.ValidationErrors
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest,
			Detail: ve.Error(), Errors: ve})
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", app.UserMessage(err))
	case errors.Is(err, domain.ErrImageUnresolvable):
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, domain.ErrUploadTicket):
		writeProblem(w, http.StatusGone, "Gone", err.Error())
	case errors.Is(err, domain.ErrUnsupportedMedia):
		writeProblem(w, http.StatusUnsupportedMediaType, "Unsupported Media Type", err.Error())
	case errors.As(err, &tooBig):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large",
			"body exceeds "+strconv.FormatInt(tooBig.Limit, 10)+" bytes")
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", app.UserMessage(err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, err)
			return false
		}
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers public reads with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// read adapts a public query into a cached JSON response.
func read[T any](q func(*http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := q(r)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeCached(w, r, v)
	}
}

// ---- public reads ----

func (h *Handlers) companyInfo(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.CompanyInfo], error) { return h.Query.CompanyInfo(r.Context()) })(w, r)
}

func (h *Handlers) socials(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.Socials], error) { return h.Query.Socials(r.Context()) })(w, r)
}

func (h *Handlers) aboutHero(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.AboutHero], error) { return h.Query.AboutHero(r.Context()) })(w, r)
}

func (h *Handlers) whoWeAre(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.WhoWeAre], error) { return h.Query.WhoWeAre(r.Context()) })(w, r)
}

func (h *Handlers) whatWeOffer(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.WhatWeOffer], error) { return h.Query.WhatWeOffer(r.Context()) })(w, r)
}

func (h *Handlers) ourStrength(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.OurStrength], error) { return h.Query.OurStrength(r.Context()) })(w, r)
}

func (h *Handlers) whyChooseUs(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Option[domain.WhyChooseUs], error) { return h.Query.WhyChooseUs(r.Context()) })(w, r)
}

func (h *Handlers) carousel(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) ([]domain.HeroSlide, error) { return h.Query.Carousel(r.Context()) })(w, r)
}

func (h *Handlers) packages(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) ([]domain.Package, error) { return h.Query.Packages(r.Context()) })(w, r)
}

func (h *Handlers) services(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) ([]domain.Service, error) { return h.Query.Services(r.Context()) })(w, r)
}

func (h *Handlers) service(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Service, error) {
		return h.Query.ServiceBySlug(r.Context(), chi.URLParam(r, "slug"))
	})(w, r)
}

func (h *Handlers) blog(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) ([]domain.BlogPost, error) { return h.Query.Blog(r.Context()) })(w, r)
}

func (h *Handlers) blogPost(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.BlogPost, error) {
		return h.Query.BlogPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	})(w, r)
}

func (h *Handlers) pages(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) ([]domain.Page, error) { return h.Query.PublishedPages(r.Context()) })(w, r)
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	read(func(r *http.Request) (domain.Page, error) {
		return h.Query.PublishedPage(r.Context(), chi.URLParam(r, "slug"))
	})(w, r)
}

// ---- public intake ----

func (h *Handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	var in app.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.Content.SubmitContact(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingInput
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Content.SubmitBooking(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ---- uploads and media ----

func (h *Handlers) acceptUpload(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	m, err := h.Uploads.Accept(r.Context(), chi.URLParam(r, "token"), r.Header.Get("Content-Type"), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"storageId": m.StorageID, "media": m})
}

func (h *Handlers) media(w http.ResponseWriter, r *http.Request) {
	rc, info, err := h.Uploads.Open(r.Context(), chi.URLParam(r, "storageId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	// storage ids are never reused
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Str("storage_id", info.ID).Msg("media stream interrupted")
	}
}
