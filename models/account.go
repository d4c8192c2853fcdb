package models

import "time"

// Account representa uma conta participante do marketplace.
// O saldo custodial (em lamports) fica na tabela balances.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	SolanaPubKey string    `json:"solana_pub_key" db:"solana_pub_key"` // Chave pública que recebe os NFTs on-chain
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
