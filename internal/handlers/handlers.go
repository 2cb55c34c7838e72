package handlers

import (
	"context"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"sneaker-shop/internal/models"
	"sneaker-shop/internal/storage"
	"sneaker-shop/internal/upload"

	"github.com/rs/zerolog"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// AccountContextKey is the context key for the authenticated account.
	AccountContextKey contextKey = "account"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	uploads      upload.Store
	templateDir  string
	secret       []byte
	secureCookie bool
	logger       zerolog.Logger
}

// NewHandlers creates a new Handlers instance. secret signs the flash
// cookie so clients cannot forge or replay notices.
func NewHandlers(db *storage.DB, uploads upload.Store, templateDir, secret string, secureCookie bool, logger zerolog.Logger) *Handlers {
	return &Handlers{
		db:           db,
		uploads:      uploads,
		templateDir:  templateDir,
		secret:       []byte(secret),
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// AccountFromContext retrieves the authenticated account from request context.
func AccountFromContext(r *http.Request) *models.Account {
	if account, ok := r.Context().Value(AccountContextKey).(*models.Account); ok {
		return account
	}
	return nil
}

// RequireAccount wraps handlers to require an authenticated session.
// It also implements rolling sessions: if a session is past the halfway
// point of its lifetime, it automatically renews the session.
func (h *Handlers) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.addFlash(w, r, "erro", "Faça login primeiro.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			h.addFlash(w, r, "erro", "Faça login primeiro.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		// Rolling session: renew if past halfway point
		// This keeps active users logged in while still expiring inactive sessions
		now := time.Now()
		timeUntilExpiry := sessionInfo.ExpiresAt.Sub(now)
		halfSessionDuration := SessionDuration / 2

		if timeUntilExpiry < halfSessionDuration {
			newExpiresAt := now.Add(SessionDuration)
			if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, sessionInfo.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Page wraps per-view data with what base.html needs on every page.
type Page struct {
	Account *models.Account
	Flashes []models.Flash
	Data    any
}

// render draws a view inside base.html, draining queued flash messages.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		h.logger.Error().Err(err).Str("view", viewName).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	page := Page{
		Account: AccountFromContext(r),
		Flashes: h.popFlashes(w, r),
		Data:    data,
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", page); err != nil {
		h.logger.Error().Err(err).Str("view", viewName).Msg("template execution error")
	}
}
