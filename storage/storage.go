package storage

import (
	"time"

	"github.com/ferreirogomes/galeria/models"
)

// Store é o contrato de persistência consumido pelos serviços. Tanto a
// conexão quanto uma transação aberta o implementam; Transact entrega ao
// callback um Store ligado à transação, e é assim que cada operação pública
// do marketplace vira tudo-ou-nada.
type Store interface {
	// Contas e saldos custodiais
	SaveAccount(account models.Account) error
	GetAccount(id string) (models.Account, bool, error)
	GetAccountBySolanaPubKey(pubKey string) (models.Account, bool, error)
	GetBalance(accountID string) (int64, error)
	CreditBalance(accountID string, amount int64) error
	// DebitBalance retorna false (sem erro) quando o saldo não cobre o valor.
	DebitBalance(accountID string, amount int64) (bool, error)

	// Tokens
	InsertToken(token *models.Token) error
	GetToken(id int64) (models.Token, bool, error)
	GetTokenByMintAddress(mintAddress string) (models.Token, bool, error)
	GetTokensByOwnerID(ownerID string) ([]models.Token, error)
	UpdateTokenOwner(id int64, ownerID string) error
	CountTokens() (int64, error)

	// Anúncios
	SaveListing(listing models.Listing) error
	GetListing(tokenID int64) (models.Listing, bool, error)
	DeactivateListing(tokenID int64, closedAt time.Time) error

	// Royalties
	SaveRoyaltyShares(shares []models.RoyaltyShare) error
	GetRoyaltyShares(tokenID int64) ([]models.RoyaltyShare, error)

	// Metadados dinâmicos
	SaveMetadata(metadata models.TokenMetadata) error
	GetMetadata(tokenID int64) (models.TokenMetadata, bool, error)
	SetBaseReference(tokenID int64, reference string) error
	TouchMetadata(tokenID int64, at time.Time) error
	UpsertAttribute(tokenID int64, key, value string) error
	GetAttribute(tokenID int64, key string) (string, bool, error)
	GetAttributes(tokenID int64) (map[string]string, error)

	// Configuração singleton do marketplace
	EnsureMarketplaceConfig(ownerAccountID string, feeBps int64) error
	GetMarketplaceConfig() (models.MarketplaceConfig, error)
	SetFeeBps(feeBps int64) error
	AddToUndistributed(delta int64) error
	// SweepUndistributed zera o saldo não distribuído atomicamente e retorna
	// o valor varrido; um saque concorrente recebe zero.
	SweepUndistributed() (int64, error)

	// Eventos
	SaveEvent(event models.MarketEvent) error
	GetEventsByTokenID(tokenID int64) ([]models.MarketEvent, error)

	// Transact executa fn dentro de uma transação SQL. Qualquer erro de fn
	// desfaz tudo. Chamado sobre um Store já transacional, apenas reusa a
	// transação corrente.
	Transact(fn func(Store) error) error
}
