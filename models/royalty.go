package models

// MaxTotalRoyaltyBps é o teto da soma das participações de royalty: 50%.
const MaxTotalRoyaltyBps = 5000

// MaxFeeBps é o teto da taxa do marketplace: 10%.
const MaxFeeBps = 1000

// BpsDenominator é o denominador de basis points (10000 = 100%).
const BpsDenominator = 10000

// RoyaltyShare é a participação de um beneficiário nos royalties de um token.
// O conjunto é definido na criação e imutável depois; Position preserva a
// ordem em que as participações foram informadas.
type RoyaltyShare struct {
	TokenID     int64  `json:"token_id" db:"token_id"`
	Position    int    `json:"position" db:"position"`
	RecipientID string `json:"recipient_id" db:"recipient_id"`
	ShareBps    int64  `json:"share_bps" db:"share_bps"`
}

// RoyaltyInfo agrega as participações de um token.
type RoyaltyInfo struct {
	TokenID  int64          `json:"token_id"`
	Shares   []RoyaltyShare `json:"shares"`
	TotalBps int64          `json:"total_bps"`
}

// TotalShareBps soma as participações de uma lista.
func TotalShareBps(shares []RoyaltyShare) int64 {
	var total int64
	for _, s := range shares {
		total += s.ShareBps
	}
	return total
}
