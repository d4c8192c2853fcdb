package models

import "time"

// Tipos de evento emitidos pelo motor de vendas.
const (
	EventListed          = "Listed"
	EventSold            = "Sold"
	EventDistributed     = "Distributed"
	EventCancelled       = "Cancelled"
	EventMetadataUpdated = "MetadataUpdated"
)

// MarketEvent é uma notificação persistida de uma transição do marketplace.
// Payload carrega os campos específicos do tipo (JSON).
type MarketEvent struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	TokenID   int64     `json:"token_id" db:"token_id"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
