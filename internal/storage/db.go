package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"sneaker-shop/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when an account email is already registered.
	// It covers both the pre-check and a write-time UNIQUE violation, so a
	// race between two registrations resolves the same way as the pre-check.
	ErrEmailTaken = errors.New("email already registered")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL,
			image TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			account_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateAccount inserts a new account. Email must already be normalized
// to lowercase by the caller.
func (db *DB) CreateAccount(name, email, passwordHash string) (*models.Account, error) {
	result, err := db.conn.Exec(
		"INSERT INTO accounts (name, email, password_hash) VALUES (?, ?, ?)",
		name, email, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetAccountByID(id)
}

// GetAccountByID retrieves an account by ID.
func (db *DB) GetAccountByID(id int64) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM accounts WHERE id = ?",
		id,
	)
	return scanAccount(row)
}

// GetAccountByEmail retrieves an account by normalized email.
func (db *DB) GetAccountByEmail(email string) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM accounts WHERE email = ?",
		email,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateAccount overwrites name, email, and password hash of an account.
func (db *DB) UpdateAccount(a *models.Account) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET name = ?, email = ?, password_hash = ? WHERE id = ?",
		a.Name, a.Email, a.PasswordHash, a.ID,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// DeleteAccount removes an account and all of its sessions.
func (db *DB) DeleteAccount(id int64) error {
	if _, err := db.conn.Exec("DELETE FROM sessions WHERE account_id = ?", id); err != nil {
		return err
	}
	_, err := db.conn.Exec("DELETE FROM accounts WHERE id = ?", id)
	return err
}

// AccountCount returns the number of accounts in the database.
func (db *DB) AccountCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}

// CreateProduct inserts a new product and returns it with its assigned ID.
func (db *DB) CreateProduct(name string, price float64, image string) (*models.Product, error) {
	result, err := db.conn.Exec(
		"INSERT INTO products (name, price, image) VALUES (?, ?, ?)",
		name, price, image,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetProduct(id)
}

// GetProduct retrieves a single product by ID.
func (db *DB) GetProduct(id int64) (*models.Product, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, price, image FROM products WHERE id = ?",
		id,
	)

	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProduct updates an existing product.
func (db *DB) UpdateProduct(p *models.Product) error {
	_, err := db.conn.Exec(
		"UPDATE products SET name = ?, price = ?, image = ? WHERE id = ?",
		p.Name, p.Price, p.Image, p.ID,
	)
	return err
}

// DeleteProduct removes a product record.
func (db *DB) DeleteProduct(id int64) error {
	_, err := db.conn.Exec("DELETE FROM products WHERE id = ?", id)
	return err
}

// ListProducts retrieves all products, newest first.
func (db *DB) ListProducts() ([]models.Product, error) {
	rows, err := db.conn.Query("SELECT id, name, price, image FROM products ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// CreateSession creates a new session for an account.
func (db *DB) CreateSession(token string, accountID int64, expiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, account_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, accountID, expiresAt, now,
	)
	return err
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	Account      *models.Account
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated account.
func (db *DB) ValidateSession(token string) (*models.Account, error) {
	info, err := db.ValidateSessionWithInfo(token)
	if err != nil {
		return nil, err
	}
	return info.Account, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
func (db *DB) ValidateSessionWithInfo(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT a.id, a.name, a.email, a.password_hash, a.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN accounts a ON s.account_id = a.id
		WHERE s.token = ? AND s.expires_at > CURRENT_TIMESTAMP
	`, token)

	var a models.Account
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &SessionInfo{
		Account:      &a,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		now, newExpiresAt, token,
	)
	return err
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}
