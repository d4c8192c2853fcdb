package storage

import (
	"fmt"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// SaveRoyaltyShares grava as participações de royalty de um token, na ordem
// informada. O conjunto é imutável: só existe inserção, nunca atualização.
func (s store) SaveRoyaltyShares(shares []models.RoyaltyShare) error {
	for _, share := range shares {
		query := `INSERT INTO royalty_shares (token_id, position, recipient_id, share_bps)
			VALUES ($1, $2, $3, $4)`
		_, err := s.q.Exec(query, share.TokenID, share.Position, share.RecipientID, share.ShareBps)
		if err != nil {
			return fmt.Errorf("falha ao salvar participação de royalty: %w", err)
		}
	}
	return nil
}

// GetRoyaltyShares retorna as participações de um token na ordem de criação.
// Lista vazia significa token sem royalty.
func (s store) GetRoyaltyShares(tokenID int64) ([]models.RoyaltyShare, error) {
	var shares []models.RoyaltyShare
	err := sqlx.Select(s.q, &shares,
		`SELECT * FROM royalty_shares WHERE token_id = $1 ORDER BY position`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar participações de royalty: %w", err)
	}
	return shares, nil
}
