package services

import "github.com/ferreirogomes/galeria/models"

// SaleSplit é a divisão exata do preço de uma venda. A soma dos três campos
// é sempre igual ao preço: a sobra do arredondamento por piso fica, por
// construção, com o vendedor.
type SaleSplit struct {
	FeeAmount     int64
	RoyaltyAmount int64
	SellerAmount  int64
}

// ComputeSaleSplit divide o preço em taxa, royalties e parcela do vendedor,
// em aritmética inteira de basis points (piso). Com taxa ≤ 10% e royalties
// ≤ 50%, a parcela do vendedor nunca é negativa.
func ComputeSaleSplit(price, feeBps, royaltyBps int64) SaleSplit {
	fee := price * feeBps / models.BpsDenominator
	royalty := price * royaltyBps / models.BpsDenominator
	return SaleSplit{
		FeeAmount:     fee,
		RoyaltyAmount: royalty,
		SellerAmount:  price - fee - royalty,
	}
}

// RoyaltyPayout é o valor devido a um beneficiário individual.
type RoyaltyPayout struct {
	RecipientID string
	Amount      int64
}

// DistributeRoyalties reparte royaltyAmount entre os beneficiários
// proporcionalmente às participações, por piso. A sobra do arredondamento é
// retornada separada e NÃO vai para o último beneficiário: ela fica retida
// no saldo não distribuído do marketplace, sacável apenas pelo dono da
// plataforma. A sobra é sempre menor que o número de beneficiários.
func DistributeRoyalties(royaltyAmount int64, shares []models.RoyaltyShare) ([]RoyaltyPayout, int64) {
	totalBps := models.TotalShareBps(shares)
	if royaltyAmount <= 0 || totalBps == 0 {
		return nil, 0
	}

	payouts := make([]RoyaltyPayout, 0, len(shares))
	var distributed int64
	for _, share := range shares {
		amount := royaltyAmount * share.ShareBps / totalBps
		distributed += amount
		payouts = append(payouts, RoyaltyPayout{
			RecipientID: share.RecipientID,
			Amount:      amount,
		})
	}
	return payouts, royaltyAmount - distributed
}
