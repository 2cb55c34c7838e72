package storage

import (
	"testing"
	"time"

	"sneaker-shop/internal/auth"
	"sneaker-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AccountTestSuite provides a test suite for account operations
type AccountTestSuite struct {
	suite.Suite
	db *DB
}

// SetupTest runs before each test
func (suite *AccountTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
}

// TearDownTest runs after each test
func (suite *AccountTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *AccountTestSuite) TestCreateAccount() {
	account, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ana", account.Name)
	assert.Equal(suite.T(), "ana@x.com", account.Email)
	assert.NotZero(suite.T(), account.ID)
}

func (suite *AccountTestSuite) TestCreateAccountDuplicateEmail() {
	_, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)

	// Second insert with the same email must hit the UNIQUE constraint
	_, err = suite.db.CreateAccount("Outra Ana", "ana@x.com", "hash2")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)

	count, err := suite.db.AccountCount()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count, "duplicate registration must not create a record")
}

func (suite *AccountTestSuite) TestGetAccountByEmail() {
	created, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)

	account, err := suite.db.GetAccountByEmail("ana@x.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.ID, account.ID)

	_, err = suite.db.GetAccountByEmail("ninguem@x.com")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *AccountTestSuite) TestUpdateAccount() {
	account, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)

	account.Name = "Ana Maria"
	account.Email = "ana.maria@x.com"
	account.PasswordHash = "newhash"
	require.NoError(suite.T(), suite.db.UpdateAccount(account))

	updated, err := suite.db.GetAccountByID(account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ana Maria", updated.Name)
	assert.Equal(suite.T(), "ana.maria@x.com", updated.Email)
	assert.Equal(suite.T(), "newhash", updated.PasswordHash)
}

func (suite *AccountTestSuite) TestUpdateAccountEmailCollision() {
	first, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateAccount("Bia", "bia@x.com", "hash")
	require.NoError(suite.T(), err)

	first.Email = "bia@x.com"
	err = suite.db.UpdateAccount(first)
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)

	// Original record must be unchanged
	unchanged, err := suite.db.GetAccountByID(first.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana@x.com", unchanged.Email)
}

func (suite *AccountTestSuite) TestDeleteAccountClearsSessions() {
	account, err := suite.db.CreateAccount("Ana", "ana@x.com", "hash")
	require.NoError(suite.T(), err)

	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.db.CreateSession(token, account.ID, time.Now().Add(time.Hour)))

	require.NoError(suite.T(), suite.db.DeleteAccount(account.ID))

	_, err = suite.db.GetAccountByID(account.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	_, err = suite.db.ValidateSession(token)
	assert.ErrorIs(suite.T(), err, ErrNotFound, "sessions must not survive account deletion")
}

// ProductTestSuite provides a test suite for product operations
type ProductTestSuite struct {
	suite.Suite
	db *DB
}

// SetupTest runs before each test
func (suite *ProductTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
}

// TearDownTest runs after each test
func (suite *ProductTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ProductTestSuite) TestCreateProduct() {
	product, err := suite.db.CreateProduct("Air Zoom", 19.90, "abc123.png")
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), product.ID)
	assert.Equal(suite.T(), "Air Zoom", product.Name)
	assert.Equal(suite.T(), 19.90, product.Price)
	assert.Equal(suite.T(), "abc123.png", product.Image)
}

func (suite *ProductTestSuite) TestListProductsNewestFirst() {
	names := []string{"Primeiro", "Segundo", "Terceiro"}
	for _, name := range names {
		_, err := suite.db.CreateProduct(name, 10, "")
		require.NoError(suite.T(), err, "failed to create product: %s", name)
	}

	products, err := suite.db.ListProducts()
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 3)

	// Most recently created first
	assert.Equal(suite.T(), "Terceiro", products[0].Name)
	assert.Equal(suite.T(), "Segundo", products[1].Name)
	assert.Equal(suite.T(), "Primeiro", products[2].Name)
}

func (suite *ProductTestSuite) TestGetProductNotFound() {
	_, err := suite.db.GetProduct(9999)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ProductTestSuite) TestUpdateProduct() {
	product, err := suite.db.CreateProduct("Air Zoom", 19.90, "old.png")
	require.NoError(suite.T(), err)

	product.Name = "Air Zoom 2"
	product.Price = 29.90
	product.Image = "new.png"
	require.NoError(suite.T(), suite.db.UpdateProduct(product))

	updated, err := suite.db.GetProduct(product.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.Product{ID: product.ID, Name: "Air Zoom 2", Price: 29.90, Image: "new.png"}, *updated)
}

func (suite *ProductTestSuite) TestDeleteProduct() {
	product, err := suite.db.CreateProduct("Air Zoom", 19.90, "")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.db.DeleteProduct(product.ID))

	_, err = suite.db.GetProduct(product.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// SessionTestSuite provides a test suite for session operations
type SessionTestSuite struct {
	suite.Suite
	db      *DB
	account *models.Account
}

// SetupTest runs before each test
func (suite *SessionTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	password, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err, "failed to hash password")

	account, err := suite.db.CreateAccount("Teste", "teste@x.com", password)
	require.NoError(suite.T(), err, "failed to create test account")
	suite.account = account
}

// TearDownTest runs after each test
func (suite *SessionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *SessionTestSuite) TestCreateAndValidateSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.account.ID, expiresAt)
	require.NoError(suite.T(), err)

	sessionAccount, err := suite.db.ValidateSession(token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "teste@x.com", sessionAccount.Email)
}

func (suite *SessionTestSuite) TestValidateSessionWithInfo() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.account.ID, expiresAt)
	require.NoError(suite.T(), err)

	info, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.account.ID, info.Account.ID)

	// Check that last_activity is recent
	timeSinceActivity := time.Since(info.LastActivity)
	assert.Less(suite.T(), timeSinceActivity, 5*time.Second, "LastActivity should be recent")
}

func (suite *SessionTestSuite) TestRenewSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	originalExpiry := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.account.ID, originalExpiry)
	require.NoError(suite.T(), err)

	// Wait a moment to ensure timestamps differ
	time.Sleep(10 * time.Millisecond)

	originalInfo, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)

	newExpiry := time.Now().Add(60 * 24 * time.Hour)
	err = suite.db.RenewSession(token, newExpiry)
	require.NoError(suite.T(), err)

	updatedInfo, err := suite.db.ValidateSessionWithInfo(token)
	require.NoError(suite.T(), err)

	assert.True(suite.T(), updatedInfo.LastActivity.After(originalInfo.LastActivity),
		"LastActivity should be updated after renewal")
	assert.True(suite.T(), updatedInfo.ExpiresAt.After(originalInfo.ExpiresAt),
		"ExpiresAt should be extended after renewal")
}

func (suite *SessionTestSuite) TestDeleteSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(token, suite.account.ID, expiresAt)
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(token)
	require.NoError(suite.T(), err, "session should exist before deletion")

	err = suite.db.DeleteSession(token)
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(token)
	assert.Error(suite.T(), err, "expected error after deleting session")
}

func (suite *SessionTestSuite) TestExpiredSessionRejected() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	err = suite.db.CreateSession(token, suite.account.ID, time.Now().Add(-time.Hour))
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(token)
	assert.Error(suite.T(), err, "expired session must not validate")
}

// Test suite runners
func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func TestProductSuite(t *testing.T) {
	suite.Run(t, new(ProductTestSuite))
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
