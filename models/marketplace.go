package models

import "time"

// MarketplaceConfig é o estado singleton do marketplace: taxa corrente,
// conta dona da plataforma e saldo acumulado ainda não sacado (sobras de
// arredondamento de royalties).
type MarketplaceConfig struct {
	FeeBps               int64     `json:"fee_bps" db:"fee_bps"`
	OwnerAccountID       string    `json:"owner_account_id" db:"owner_account_id"`
	UndistributedBalance int64     `json:"undistributed_balance" db:"undistributed_balance"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
