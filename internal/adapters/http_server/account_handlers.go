package httpserver

import (
	"net/http"

	"travel_cms/internal/app"
)

func (h *Handlers) setSessionCookie(w http.ResponseWriter, s app.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var in app.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Accounts.SignUp(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.setSessionCookie(w, s)
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var in app.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Accounts.SignIn(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.setSessionCookie(w, s)
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.SecureCookies})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Me(r.Context(), authFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
