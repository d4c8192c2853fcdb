package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// InsertToken insere um novo token e preenche token.ID com o identificador
// monotônico atribuído pelo banco.
func (s store) InsertToken(token *models.Token) error {
	query := `INSERT INTO tokens (creator_id, owner_id, mint_address, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	err := sqlx.Get(s.q, &token.ID, query, token.CreatorID, token.OwnerID, token.MintAddress, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao inserir token: %w", err)
	}
	return nil
}

// GetToken busca um token pelo ID.
func (s store) GetToken(id int64) (models.Token, bool, error) {
	var token models.Token
	err := sqlx.Get(s.q, &token, `SELECT * FROM tokens WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Token{}, false, nil
	}
	if err != nil {
		return models.Token{}, false, fmt.Errorf("falha ao buscar token: %w", err)
	}
	return token, true, nil
}

// GetTokenByMintAddress busca um token pelo endereço de mint on-chain.
// Usado pelo listener para mapear instruções SPL de volta ao registro interno.
func (s store) GetTokenByMintAddress(mintAddress string) (models.Token, bool, error) {
	var token models.Token
	err := sqlx.Get(s.q, &token, `SELECT * FROM tokens WHERE mint_address = $1`, mintAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Token{}, false, nil
	}
	if err != nil {
		return models.Token{}, false, fmt.Errorf("falha ao buscar token por mint: %w", err)
	}
	return token, true, nil
}

// GetTokensByOwnerID lista os tokens de um dono.
func (s store) GetTokensByOwnerID(ownerID string) ([]models.Token, error) {
	var tokens []models.Token
	err := sqlx.Select(s.q, &tokens, `SELECT * FROM tokens WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar tokens do dono: %w", err)
	}
	return tokens, nil
}

// UpdateTokenOwner registra a mudança de dono de um token.
func (s store) UpdateTokenOwner(id int64, ownerID string) error {
	_, err := s.q.Exec(`UPDATE tokens SET owner_id = $1 WHERE id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("falha ao atualizar dono do token: %w", err)
	}
	return nil
}

// CountTokens retorna o total de tokens já cunhados.
func (s store) CountTokens() (int64, error) {
	var count int64
	err := sqlx.Get(s.q, &count, `SELECT COUNT(*) FROM tokens`)
	if err != nil {
		return 0, fmt.Errorf("falha ao contar tokens: %w", err)
	}
	return count, nil
}
