package services_test

import (
	"context"
	"time"

	"github.com/ferreirogomes/galeria/models"
	"github.com/ferreirogomes/galeria/storage"

	"github.com/stretchr/testify/mock"
)

// MockStore é uma implementação mock do storage.Store para testes de unidade.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveAccount(account models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}
func (m *MockStore) GetAccount(id string) (models.Account, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.Account), args.Bool(1), args.Error(2)
}
func (m *MockStore) GetAccountBySolanaPubKey(pubKey string) (models.Account, bool, error) {
	args := m.Called(pubKey)
	return args.Get(0).(models.Account), args.Bool(1), args.Error(2)
}
func (m *MockStore) GetBalance(accountID string) (int64, error) {
	args := m.Called(accountID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) CreditBalance(accountID string, amount int64) error {
	args := m.Called(accountID, amount)
	return args.Error(0)
}
func (m *MockStore) DebitBalance(accountID string, amount int64) (bool, error) {
	args := m.Called(accountID, amount)
	return args.Bool(0), args.Error(1)
}
func (m *MockStore) InsertToken(token *models.Token) error {
	args := m.Called(token)
	return args.Error(0)
}
func (m *MockStore) GetToken(id int64) (models.Token, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.Token), args.Bool(1), args.Error(2)
}
func (m *MockStore) GetTokenByMintAddress(mintAddress string) (models.Token, bool, error) {
	args := m.Called(mintAddress)
	return args.Get(0).(models.Token), args.Bool(1), args.Error(2)
}
func (m *MockStore) GetTokensByOwnerID(ownerID string) ([]models.Token, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]models.Token), args.Error(1)
}
func (m *MockStore) UpdateTokenOwner(id int64, ownerID string) error {
	args := m.Called(id, ownerID)
	return args.Error(0)
}
func (m *MockStore) CountTokens() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) SaveListing(listing models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}
func (m *MockStore) GetListing(tokenID int64) (models.Listing, bool, error) {
	args := m.Called(tokenID)
	return args.Get(0).(models.Listing), args.Bool(1), args.Error(2)
}
func (m *MockStore) DeactivateListing(tokenID int64, closedAt time.Time) error {
	args := m.Called(tokenID, closedAt)
	return args.Error(0)
}
func (m *MockStore) SaveRoyaltyShares(shares []models.RoyaltyShare) error {
	args := m.Called(shares)
	return args.Error(0)
}
func (m *MockStore) GetRoyaltyShares(tokenID int64) ([]models.RoyaltyShare, error) {
	args := m.Called(tokenID)
	return args.Get(0).([]models.RoyaltyShare), args.Error(1)
}
func (m *MockStore) SaveMetadata(metadata models.TokenMetadata) error {
	args := m.Called(metadata)
	return args.Error(0)
}
func (m *MockStore) GetMetadata(tokenID int64) (models.TokenMetadata, bool, error) {
	args := m.Called(tokenID)
	return args.Get(0).(models.TokenMetadata), args.Bool(1), args.Error(2)
}
func (m *MockStore) SetBaseReference(tokenID int64, reference string) error {
	args := m.Called(tokenID, reference)
	return args.Error(0)
}
func (m *MockStore) TouchMetadata(tokenID int64, at time.Time) error {
	args := m.Called(tokenID, at)
	return args.Error(0)
}
func (m *MockStore) UpsertAttribute(tokenID int64, key, value string) error {
	args := m.Called(tokenID, key, value)
	return args.Error(0)
}
func (m *MockStore) GetAttribute(tokenID int64, key string) (string, bool, error) {
	args := m.Called(tokenID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}
func (m *MockStore) GetAttributes(tokenID int64) (map[string]string, error) {
	args := m.Called(tokenID)
	return args.Get(0).(map[string]string), args.Error(1)
}
func (m *MockStore) EnsureMarketplaceConfig(ownerAccountID string, feeBps int64) error {
	args := m.Called(ownerAccountID, feeBps)
	return args.Error(0)
}
func (m *MockStore) GetMarketplaceConfig() (models.MarketplaceConfig, error) {
	args := m.Called()
	return args.Get(0).(models.MarketplaceConfig), args.Error(1)
}
func (m *MockStore) SetFeeBps(feeBps int64) error {
	args := m.Called(feeBps)
	return args.Error(0)
}
func (m *MockStore) AddToUndistributed(delta int64) error {
	args := m.Called(delta)
	return args.Error(0)
}
func (m *MockStore) SweepUndistributed() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) SaveEvent(event models.MarketEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
func (m *MockStore) GetEventsByTokenID(tokenID int64) ([]models.MarketEvent, error) {
	args := m.Called(tokenID)
	return args.Get(0).([]models.MarketEvent), args.Error(1)
}

// Transact executa o callback sobre o próprio mock: cada teste enxerga as
// chamadas feitas dentro da "transação" diretamente.
func (m *MockStore) Transact(fn func(storage.Store) error) error {
	return fn(m)
}

// MockLedger é uma implementação mock do services.Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Mint(ctx context.Context, ownerPubKey string) (string, error) {
	args := m.Called(ownerPubKey)
	return args.String(0), args.Error(1)
}
func (m *MockLedger) Transfer(ctx context.Context, mintAddress, fromPubKey, toPubKey string) error {
	args := m.Called(mintAddress, fromPubKey, toPubKey)
	return args.Error(0)
}
func (m *MockLedger) OwnerOf(ctx context.Context, mintAddress string) (string, bool, error) {
	args := m.Called(mintAddress)
	return args.String(0), args.Bool(1), args.Error(2)
}
func (m *MockLedger) Exists(ctx context.Context, mintAddress string) (bool, error) {
	args := m.Called(mintAddress)
	return args.Bool(0), args.Error(1)
}
