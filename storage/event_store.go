package storage

import (
	"fmt"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// SaveEvent persiste uma notificação do marketplace.
func (s store) SaveEvent(event models.MarketEvent) error {
	query := `INSERT INTO market_events (id, type, token_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.q.Exec(query, event.ID, event.Type, event.TokenID, event.Payload, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar evento: %w", err)
	}
	return nil
}

// GetEventsByTokenID lista os eventos de um token em ordem de emissão.
func (s store) GetEventsByTokenID(tokenID int64) ([]models.MarketEvent, error) {
	var events []models.MarketEvent
	err := sqlx.Select(s.q, &events,
		`SELECT * FROM market_events WHERE token_id = $1 ORDER BY created_at, id`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar eventos: %w", err)
	}
	return events, nil
}
