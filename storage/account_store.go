package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/galeria/models"

	"github.com/jmoiron/sqlx"
)

// SaveAccount insere ou atualiza uma conta.
func (s store) SaveAccount(account models.Account) error {
	query := `INSERT INTO accounts (id, name, solana_pub_key, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, solana_pub_key = EXCLUDED.solana_pub_key`
	_, err := s.q.Exec(query, account.ID, account.Name, account.SolanaPubKey, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar conta: %w", err)
	}
	return nil
}

// GetAccount busca uma conta pelo ID.
func (s store) GetAccount(id string) (models.Account, bool, error) {
	var account models.Account
	err := sqlx.Get(s.q, &account, `SELECT * FROM accounts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, fmt.Errorf("falha ao buscar conta: %w", err)
	}
	return account, true, nil
}

// GetAccountBySolanaPubKey busca uma conta pela chave pública Solana.
// Usado pelo listener para mapear carteiras on-chain de volta a contas.
func (s store) GetAccountBySolanaPubKey(pubKey string) (models.Account, bool, error) {
	var account models.Account
	err := sqlx.Get(s.q, &account, `SELECT * FROM accounts WHERE solana_pub_key = $1`, pubKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, fmt.Errorf("falha ao buscar conta por chave pública: %w", err)
	}
	return account, true, nil
}

// GetBalance retorna o saldo custodial da conta, em lamports.
// Conta sem linha de saldo tem saldo zero.
func (s store) GetBalance(accountID string) (int64, error) {
	var amount int64
	err := sqlx.Get(s.q, &amount, `SELECT amount FROM balances WHERE account_id = $1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("falha ao buscar saldo: %w", err)
	}
	return amount, nil
}

// CreditBalance adiciona amount ao saldo da conta.
func (s store) CreditBalance(accountID string, amount int64) error {
	query := `INSERT INTO balances (account_id, amount) VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`
	_, err := s.q.Exec(query, accountID, amount)
	if err != nil {
		return fmt.Errorf("falha ao creditar saldo: %w", err)
	}
	return nil
}

// DebitBalance subtrai amount do saldo da conta. Retorna false quando o
// saldo não cobre o valor; nesse caso nada é alterado.
func (s store) DebitBalance(accountID string, amount int64) (bool, error) {
	query := `UPDATE balances SET amount = amount - $1 WHERE account_id = $2 AND amount >= $1`
	res, err := s.q.Exec(query, amount, accountID)
	if err != nil {
		return false, fmt.Errorf("falha ao debitar saldo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("falha ao verificar débito: %w", err)
	}
	return n == 1, nil
}
