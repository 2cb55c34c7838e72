package models

import "time"

// Account represents a registered user's identity and credential record.
// Email is stored lowercase; PasswordHash is a bcrypt hash, never plaintext.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product represents a catalog item. Image, when non-empty, is the
// generated filename of an uploaded picture in the image store.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// Session represents a browser session bound to an account.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flash is a one-shot notice rendered on the next page only.
// Kind is "erro" or "sucesso".
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}
