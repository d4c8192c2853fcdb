package storage

import (
	"fmt"
	"time"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// EnsureMarketplaceConfig cria a linha singleton de configuração caso ainda
// não exista. Idempotente; chamado na subida do processo.
func (s store) EnsureMarketplaceConfig(ownerAccountID string, feeBps int64) error {
	query := `INSERT INTO marketplace_config (id, fee_bps, owner_account_id, undistributed_balance, updated_at)
		VALUES (TRUE, $1, $2, 0, $3)
		ON CONFLICT (id) DO NOTHING`
	_, err := s.q.Exec(query, feeBps, ownerAccountID, time.Now())
	if err != nil {
		return fmt.Errorf("falha ao inicializar configuração do marketplace: %w", err)
	}
	return nil
}

// GetMarketplaceConfig lê a configuração singleton.
func (s store) GetMarketplaceConfig() (models.MarketplaceConfig, error) {
	var cfg models.MarketplaceConfig
	err := sqlx.Get(s.q, &cfg,
		`SELECT fee_bps, owner_account_id, undistributed_balance, updated_at FROM marketplace_config WHERE id = TRUE`)
	if err != nil {
		return models.MarketplaceConfig{}, fmt.Errorf("falha ao buscar configuração do marketplace: %w", err)
	}
	return cfg, nil
}

// SetFeeBps atualiza a taxa do marketplace.
func (s store) SetFeeBps(feeBps int64) error {
	_, err := s.q.Exec(`UPDATE marketplace_config SET fee_bps = $1, updated_at = $2 WHERE id = TRUE`, feeBps, time.Now())
	if err != nil {
		return fmt.Errorf("falha ao atualizar taxa: %w", err)
	}
	return nil
}

// AddToUndistributed acumula sobras de arredondamento no saldo não distribuído.
func (s store) AddToUndistributed(delta int64) error {
	_, err := s.q.Exec(
		`UPDATE marketplace_config SET undistributed_balance = undistributed_balance + $1, updated_at = $2 WHERE id = TRUE`,
		delta, time.Now())
	if err != nil {
		return fmt.Errorf("falha ao acumular saldo não distribuído: %w", err)
	}
	return nil
}

// SweepUndistributed zera o saldo não distribuído e retorna o valor que havia
// nele, num único UPDATE atômico: dois saques concorrentes nunca leem o mesmo
// saldo — o segundo recebe zero.
func (s store) SweepUndistributed() (int64, error) {
	var amount int64
	err := sqlx.Get(s.q, &amount, `
		UPDATE marketplace_config m
		SET undistributed_balance = 0, updated_at = $1
		FROM (SELECT undistributed_balance FROM marketplace_config WHERE id = TRUE FOR UPDATE) prev
		WHERE m.id = TRUE
		RETURNING prev.undistributed_balance`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("falha ao sacar saldo não distribuído: %w", err)
	}
	return amount, nil
}
