package models

import (
	"database/sql"
	"time"
)

// Listing é o anúncio de venda de um token por preço fixo, em lamports.
// Ciclo de vida: criado ativo junto com o token; desativado definitivamente
// por venda ou cancelamento. Não há reativação.
type Listing struct {
	TokenID   int64        `json:"token_id" db:"token_id"`
	SellerID  string       `json:"seller_id" db:"seller_id"`
	Price     int64        `json:"price" db:"price"` // Sempre > 0 enquanto ativo
	Active    bool         `json:"active" db:"active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ClosedAt  sql.NullTime `json:"closed_at,omitempty" db:"closed_at"`
}
