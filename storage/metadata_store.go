package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// SaveMetadata insere o registro de metadados de um token recém-criado.
func (s store) SaveMetadata(metadata models.TokenMetadata) error {
	query := `INSERT INTO token_metadata (token_id, base_reference, last_update)
		VALUES ($1, $2, $3)`
	_, err := s.q.Exec(query, metadata.TokenID, metadata.BaseReference, metadata.LastUpdate)
	if err != nil {
		return fmt.Errorf("falha ao salvar metadados: %w", err)
	}
	for key, value := range metadata.Attributes {
		if err := s.UpsertAttribute(metadata.TokenID, key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetMetadata busca os metadados de um token, atributos inclusos.
func (s store) GetMetadata(tokenID int64) (models.TokenMetadata, bool, error) {
	var metadata models.TokenMetadata
	err := sqlx.Get(s.q, &metadata,
		`SELECT token_id, base_reference, last_update FROM token_metadata WHERE token_id = $1`, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TokenMetadata{}, false, nil
	}
	if err != nil {
		return models.TokenMetadata{}, false, fmt.Errorf("falha ao buscar metadados: %w", err)
	}
	metadata.Attributes, err = s.GetAttributes(tokenID)
	if err != nil {
		return models.TokenMetadata{}, false, err
	}
	return metadata, true, nil
}

// SetBaseReference substitui a referência base do token.
func (s store) SetBaseReference(tokenID int64, reference string) error {
	_, err := s.q.Exec(`UPDATE token_metadata SET base_reference = $1 WHERE token_id = $2`, reference, tokenID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar referência base: %w", err)
	}
	return nil
}

// TouchMetadata registra o instante da última mutação dos metadados.
func (s store) TouchMetadata(tokenID int64, at time.Time) error {
	_, err := s.q.Exec(`UPDATE token_metadata SET last_update = $1 WHERE token_id = $2`, at, tokenID)
	if err != nil {
		return fmt.Errorf("falha ao registrar atualização de metadados: %w", err)
	}
	return nil
}

// UpsertAttribute grava um par chave→valor; a última escrita por chave vence.
func (s store) UpsertAttribute(tokenID int64, key, value string) error {
	query := `INSERT INTO token_attributes (token_id, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (token_id, key) DO UPDATE SET value = EXCLUDED.value`
	_, err := s.q.Exec(query, tokenID, key, value)
	if err != nil {
		return fmt.Errorf("falha ao salvar atributo: %w", err)
	}
	return nil
}

// GetAttribute busca o valor de um atributo.
func (s store) GetAttribute(tokenID int64, key string) (string, bool, error) {
	var value string
	err := sqlx.Get(s.q, &value,
		`SELECT value FROM token_attributes WHERE token_id = $1 AND key = $2`, tokenID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("falha ao buscar atributo: %w", err)
	}
	return value, true, nil
}

// GetAttributes retorna o mapa completo de atributos de um token.
func (s store) GetAttributes(tokenID int64) (map[string]string, error) {
	rows, err := s.q.Queryx(`SELECT key, value FROM token_attributes WHERE token_id = $1`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar atributos: %w", err)
	}
	defer rows.Close()

	attributes := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("falha ao ler atributo: %w", err)
		}
		attributes[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("falha ao iterar atributos: %w", err)
	}
	return attributes, nil
}
