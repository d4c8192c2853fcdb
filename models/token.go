package models

import "time"

// Token representa um NFT registrado no marketplace: identificador único
// monotônico, um criador imutável e exatamente um dono por vez.
type Token struct {
	ID          int64     `json:"id" db:"id"`
	CreatorID   string    `json:"creator_id" db:"creator_id"` // Conta que executou a criação; nunca muda
	OwnerID     string    `json:"owner_id" db:"owner_id"`     // Dono atual segundo o ledger
	MintAddress string    `json:"mint_address" db:"mint_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
