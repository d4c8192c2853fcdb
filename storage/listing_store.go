package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// SaveListing insere o anúncio de um token. Um token tem no máximo um
// anúncio; a chave primária em token_id impede um segundo.
func (s store) SaveListing(listing models.Listing) error {
	query := `INSERT INTO listings (token_id, seller_id, price, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.q.Exec(query, listing.TokenID, listing.SellerID, listing.Price, listing.Active, listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar anúncio: %w", err)
	}
	return nil
}

// GetListing busca o anúncio de um token. Dentro de uma transação a linha é
// travada (FOR UPDATE) para serializar compras concorrentes do mesmo token.
func (s store) GetListing(tokenID int64) (models.Listing, bool, error) {
	query := `SELECT * FROM listings WHERE token_id = $1`
	if _, inTx := s.q.(*sqlx.Tx); inTx {
		query += ` FOR UPDATE`
	}
	var listing models.Listing
	err := sqlx.Get(s.q, &listing, query, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, false, nil
	}
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("falha ao buscar anúncio: %w", err)
	}
	return listing, true, nil
}

// DeactivateListing fecha o anúncio em definitivo. Não há caminho de volta
// para active = true.
func (s store) DeactivateListing(tokenID int64, closedAt time.Time) error {
	query := `UPDATE listings SET active = FALSE, closed_at = $1 WHERE token_id = $2 AND active`
	res, err := s.q.Exec(query, closedAt, tokenID)
	if err != nil {
		return fmt.Errorf("falha ao desativar anúncio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao verificar desativação: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("anúncio do token %d já estava inativo", tokenID)
	}
	return nil
}
