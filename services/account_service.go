package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ferreirogomes/galeria/models"
	"github.com/ferreirogomes/galeria/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService cuida das contas participantes e dos saldos custodiais em
// lamports que financiam as compras.
type AccountService struct {
	DB     storage.Store
	Logger *zap.SugaredLogger
}

// NewAccountService cria o serviço de contas.
func NewAccountService(db storage.Store, logger *zap.SugaredLogger) *AccountService {
	return &AccountService{DB: db, Logger: logger}
}

// CreateAccount registra uma nova conta com a chave pública Solana que
// receberá os NFTs liberados da custódia.
func (s *AccountService) CreateAccount(ctx context.Context, name, solanaPubKey string) (models.Account, error) {
	if name == "" {
		return models.Account{}, fmt.Errorf("%w: nome é obrigatório", models.ErrInvalidInput)
	}
	account := models.Account{
		ID:           uuid.New().String(),
		Name:         name,
		SolanaPubKey: solanaPubKey,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.SaveAccount(account); err != nil {
		return models.Account{}, err
	}
	s.Logger.Infow("conta criada", "id", account.ID, "nome", name)
	return account, nil
}

// GetAccount busca uma conta pelo ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (models.Account, error) {
	account, found, err := s.DB.GetAccount(id)
	if err != nil {
		return models.Account{}, err
	}
	if !found {
		return models.Account{}, fmt.Errorf("%w: %s", models.ErrAccountNotFound, id)
	}
	return account, nil
}

// Deposit credita lamports no saldo custodial de uma conta.
func (s *AccountService) Deposit(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: depósito deve ser positivo", models.ErrInvalidInput)
	}
	var balance int64
	err := s.DB.Transact(func(tx storage.Store) error {
		if _, found, err := tx.GetAccount(accountID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
		}
		if err := tx.CreditBalance(accountID, amount); err != nil {
			return err
		}
		var err error
		balance, err = tx.GetBalance(accountID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.Logger.Infow("depósito efetuado", "conta", accountID, "valor", amount)
	return balance, nil
}

// GetBalance retorna o saldo custodial de uma conta.
func (s *AccountService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	if _, found, err := s.DB.GetAccount(accountID); err != nil {
		return 0, err
	} else if !found {
		return 0, fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}
	return s.DB.GetBalance(accountID)
}

// GetTokensByOwner lista os tokens cujo dono atual é a conta.
func (s *AccountService) GetTokensByOwner(ctx context.Context, accountID string) ([]models.Token, error) {
	if _, found, err := s.DB.GetAccount(accountID); err != nil {
		return nil, err
	} else if !found {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}
	return s.DB.GetTokensByOwnerID(accountID)
}
