// Package session serves the login endpoint and guards routes with bearer tokens.
package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	token, err := h.svc.IssueToken(sess)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Email:     sess.Email,
		Name:      sess.Name,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Authenticate rejects requests without a valid bearer token and stores the
// session in the request context.
func Authenticate(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respond.Error(w, auth.ErrInvalidToken)
				return
			}

			sess, err := svc.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				respond.Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := auth.FromContext(r.Context())
			if !ok {
				respond.Error(w, auth.ErrInvalidToken)
				return
			}

			if sess.Role != role {
				respond.Error(w, auth.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
