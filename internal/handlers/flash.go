package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"sneaker-shop/internal/models"
)

// FlashCookieName is the name of the cookie carrying queued flash messages.
const FlashCookieName = "flash"

// addFlash appends a one-shot message to the flash queue. The queue lives
// in an HMAC-signed cookie; a tampered cookie is treated as empty.
func (h *Handlers) addFlash(w http.ResponseWriter, r *http.Request, kind, text string) {
	flashes := append(h.readFlashes(r), models.Flash{Kind: kind, Text: text})

	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    h.signFlash(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes drains the queue: it returns pending messages and clears the
// cookie so each message renders exactly once.
func (h *Handlers) popFlashes(w http.ResponseWriter, r *http.Request) []models.Flash {
	flashes := h.readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

func (h *Handlers) readFlashes(r *http.Request) []models.Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	payload, ok := h.verifyFlash(cookie.Value)
	if !ok {
		return nil
	}
	var flashes []models.Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}

func (h *Handlers) signFlash(payload []byte) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + hex.EncodeToString(mac.Sum(nil))
}

func (h *Handlers) verifyFlash(value string) ([]byte, bool) {
	encoded, sig, found := strings.Cut(value, ".")
	if !found {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return nil, false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), want) {
		return nil, false
	}
	return payload, true
}
