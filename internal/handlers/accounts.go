package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sneaker-shop/internal/auth"
	"sneaker-shop/internal/storage"
)

// Home renders the storefront with the full product list. No login required.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	view, err := h.productsView()
	if err != nil {
		h.logger.Error().Err(err).Msg("list products")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "home.html", view)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "cadastro.html", nil)
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.addFlash(w, r, "erro", "Envio de formulário inválido.")
		http.Redirect(w, r, "/cadastro", http.StatusFound)
		return
	}

	name := strings.TrimSpace(r.FormValue("nome"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("senha")

	switch {
	case name == "" || email == "" || password == "":
		h.addFlash(w, r, "erro", "Preencha todos os campos.")
	case !strings.Contains(email, "@"):
		h.addFlash(w, r, "erro", "E-mail inválido.")
	default:
		hash, err := auth.HashPassword(password)
		if err != nil {
			h.logger.Error().Err(err).Msg("hash password")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		_, err = h.db.CreateAccount(name, email, hash)
		if errors.Is(err, storage.ErrEmailTaken) {
			h.addFlash(w, r, "erro", "E-mail já registrado.")
			break
		}
		if err != nil {
			h.logger.Error().Err(err).Msg("create account")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.addFlash(w, r, "sucesso", "Usuário cadastrado com sucesso!")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/cadastro", http.StatusFound)
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the profile
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/perfil", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", nil)
}

// Login handles the login form submission. The same generic error covers
// unknown emails and wrong passwords so registered emails do not leak.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.addFlash(w, r, "erro", "Envio de formulário inválido.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("senha")

	account, err := h.db.GetAccountByEmail(email)
	if err != nil || !auth.CheckPassword(password, account.PasswordHash) {
		h.addFlash(w, r, "erro", "Credenciais incorretas.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.logger.Error().Err(err).Msg("generate session token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.db.CreateSession(token, account.ID, time.Now().Add(SessionDuration)); err != nil {
		h.logger.Error().Err(err).Msg("create session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	h.addFlash(w, r, "sucesso", fmt.Sprintf("Bem-vindo(a), %s!", account.Name))
	http.Redirect(w, r, "/perfil", http.StatusFound)
}

// Profile renders the profile page and dispatches edit/delete via the
// _acao form field. Requires an authenticated session.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.addFlash(w, r, "erro", "Envio de formulário inválido.")
			http.Redirect(w, r, "/perfil", http.StatusFound)
			return
		}
		switch r.FormValue("_acao") {
		case "editar":
			h.editProfile(w, r)
			return
		case "excluir":
			h.deleteProfile(w, r)
			return
		}
	}

	h.render(w, r, "perfil.html", account)
}

// editProfile overwrites name, email, and password hash together. The
// password must be re-entered on every edit; there is no way to change
// the name while keeping the old password.
func (h *Handlers) editProfile(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r)

	name := strings.TrimSpace(r.FormValue("nome"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("senha")

	if name == "" || email == "" || password == "" {
		h.addFlash(w, r, "erro", "Nenhum campo pode ficar vazio.")
		http.Redirect(w, r, "/perfil", http.StatusFound)
		return
	}

	if email != account.Email {
		if _, err := h.db.GetAccountByEmail(email); err == nil {
			h.addFlash(w, r, "erro", "E-mail já em uso por outro cadastro.")
			http.Redirect(w, r, "/perfil", http.StatusFound)
			return
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.logger.Error().Err(err).Msg("hash password")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	account.Name = name
	account.Email = email
	account.PasswordHash = hash
	err = h.db.UpdateAccount(account)
	if errors.Is(err, storage.ErrEmailTaken) {
		h.addFlash(w, r, "erro", "E-mail já em uso por outro cadastro.")
		http.Redirect(w, r, "/perfil", http.StatusFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("update account")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.addFlash(w, r, "sucesso", "Dados atualizados!")
	http.Redirect(w, r, "/perfil", http.StatusFound)
}

func (h *Handlers) deleteProfile(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r)

	if err := h.db.DeleteAccount(account.ID); err != nil {
		h.logger.Error().Err(err).Msg("delete account")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.clearSessionCookie(w)
	h.addFlash(w, r, "sucesso", "Conta excluída.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session. Safe to call without one.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			h.logger.Error().Err(err).Msg("delete session")
		}
	}
	h.clearSessionCookie(w)
	h.addFlash(w, r, "sucesso", "Até logo!")
	http.Redirect(w, r, "/", http.StatusFound)
}
