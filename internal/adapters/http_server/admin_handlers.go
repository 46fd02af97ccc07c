package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"travel_cms/internal/app"
	"travel_cms/internal/domain"
)

func (h *Handlers) mountAdmin(r chi.Router) {
	r.Use(RequireAdmin)

	c := h.Content
	r.Post("/carousel", create(c.AddSlide))
	r.Put("/carousel/{id}", update(c.UpdateSlide))
	r.Delete("/carousel/{id}", remove(c.DeleteSlide))
	r.Post("/packages", create(c.AddPackage))
	r.Put("/packages/{id}", update(c.UpdatePackage))
	r.Delete("/packages/{id}", remove(c.DeletePackage))
	r.Post("/services", create(c.AddService))
	r.Put("/services/{id}", update(c.UpdateService))
	r.Delete("/services/{id}", remove(c.DeleteService))
	r.Post("/blog", create(c.AddBlogPost))
	r.Put("/blog/{id}", update(c.UpdateBlogPost))
	r.Delete("/blog/{id}", remove(c.DeleteBlogPost))

	r.Put("/company-info", set(c.SetCompanyInfo))
	r.Put("/socials", set(c.SetSocials))
	r.Put("/about/hero", set(c.SetAboutHero))
	r.Put("/about/who-we-are", set(c.SetWhoWeAre))
	r.Put("/about/what-we-offer", set(c.SetWhatWeOffer))
	r.Put("/about/our-strength", set(c.SetOurStrength))
	r.Put("/about/why-choose-us", set(c.SetWhyChooseUs))

	r.Get("/contact", list(c.ListContacts))
	r.Delete("/contact/{id}", remove(c.DeleteContact))
	r.Get("/bookings", h.listBookings)
	r.Delete("/bookings/{id}", remove(c.DeleteBooking))

	r.Get("/pages", list(c.ListPages))
	r.Put("/pages/{slug}", h.upsertPage)
	r.Delete("/pages/{slug}", h.removePage)

	r.Post("/uploads", h.requestUpload)

	r.Put("/users/{id}/role", h.setRole)
	r.Delete("/users/{id}/role", h.removeRole)
}

func create[In, Out any](fn func(context.Context, domain.AuthContext, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r.Context(), authFrom(r), in)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// set is create for singletons: the document is replaced in place.
func set[In, Out any](fn func(context.Context, domain.AuthContext, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r.Context(), authFrom(r), in)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func update[In, Out any](fn func(context.Context, domain.AuthContext, string, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r.Context(), authFrom(r), chi.URLParam(r, "id"), in)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func remove(fn func(context.Context, domain.AuthContext, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context(), authFrom(r), chi.URLParam(r, "id")); err != nil {
			fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func list[T any](fn func(context.Context, domain.AuthContext) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), authFrom(r))
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	var f app.BookingFilter
	q := r.URL.Query()
	if e := strings.TrimSpace(q.Get("email")); e != "" {
		f.Email = domain.Some(e)
	}
	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		f.Limit = domain.Some(l)
	}
	out, err := h.Content.ListBookings(r.Context(), authFrom(r), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) upsertPage(w http.ResponseWriter, r *http.Request) {
	var in app.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.Content.UpsertPage(r.Context(), authFrom(r), chi.URLParam(r, "slug"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) removePage(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Content.RemovePage(r.Context(), authFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if !removed {
		fail(w, r, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) requestUpload(w http.ResponseWriter, r *http.Request) {
	t, err := h.Uploads.RequestTarget(r.Context(), authFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type roleInput struct {
	Role string `json:"role"`
}

func (h *Handlers) setRole(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Accounts.SetRole(r.Context(), authFrom(r), chi.URLParam(r, "id"), domain.Role(in.Role))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) removeRole(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.RemoveRole(r.Context(), authFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
