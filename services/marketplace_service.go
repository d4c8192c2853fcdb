package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ferreirogomes/galeria/models"
	"github.com/ferreirogomes/galeria/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MarketplaceService é o motor de anúncio/venda/royalties e o guardião dos
// metadados mutáveis. Cada operação pública roda dentro de uma única
// transação SQL (storage.Store.Transact): ou completa inteira, ou não deixa
// efeito observável — inclusive quando a chamada ao ledger falha no meio de
// uma compra.
type MarketplaceService struct {
	DB     storage.Store
	Ledger Ledger
	Logger *zap.SugaredLogger
}

// NewMarketplaceService cria o serviço do marketplace.
func NewMarketplaceService(db storage.Store, ledger Ledger, logger *zap.SugaredLogger) *MarketplaceService {
	return &MarketplaceService{DB: db, Ledger: ledger, Logger: logger}
}

// CreateAndListRequest carrega os insumos da criação: conta de destino,
// referência inicial de metadados, preço do anúncio e os arrays paralelos de
// royalties.
type CreateAndListRequest struct {
	CreatorID         string
	DestinationID     string
	BaseReference     string
	Price             int64
	RoyaltyRecipients []string
	RoyaltyShareBps   []int64
}

// CreateAndList cunha um novo token, registra o criador, grava os royalties,
// inicializa os metadados e abre o anúncio — tudo ou nada. Retorna o ID do
// novo token.
func (s *MarketplaceService) CreateAndList(ctx context.Context, req CreateAndListRequest) (int64, error) {
	if req.Price <= 0 {
		return 0, fmt.Errorf("%w: preço deve ser positivo", models.ErrInvalidInput)
	}
	if len(req.RoyaltyRecipients) != len(req.RoyaltyShareBps) {
		return 0, fmt.Errorf("%w: beneficiários e participações com tamanhos diferentes", models.ErrInvalidInput)
	}
	var totalBps int64
	for _, bps := range req.RoyaltyShareBps {
		if bps <= 0 {
			return 0, fmt.Errorf("%w: participação de royalty deve ser positiva", models.ErrInvalidInput)
		}
		totalBps += bps
	}
	if totalBps > models.MaxTotalRoyaltyBps {
		return 0, fmt.Errorf("%w: soma dos royalties (%d bps) excede o teto de %d bps",
			models.ErrInvalidInput, totalBps, models.MaxTotalRoyaltyBps)
	}

	var tokenID int64
	err := s.DB.Transact(func(tx storage.Store) error {
		if _, found, err := tx.GetAccount(req.CreatorID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: criador %s", models.ErrAccountNotFound, req.CreatorID)
		}
		destination, found, err := tx.GetAccount(req.DestinationID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: destino %s", models.ErrAccountNotFound, req.DestinationID)
		}
		for _, recipientID := range req.RoyaltyRecipients {
			if _, found, err := tx.GetAccount(recipientID); err != nil {
				return err
			} else if !found {
				return fmt.Errorf("%w: beneficiário de royalty %s", models.ErrAccountNotFound, recipientID)
			}
		}

		mintAddress, err := s.Ledger.Mint(ctx, destination.SolanaPubKey)
		if err != nil {
			return fmt.Errorf("falha ao cunhar no ledger: %w", err)
		}

		now := time.Now()
		token := models.Token{
			CreatorID:   req.CreatorID,
			OwnerID:     req.DestinationID,
			MintAddress: mintAddress,
			CreatedAt:   now,
		}
		if err := tx.InsertToken(&token); err != nil {
			return err
		}
		tokenID = token.ID

		shares := make([]models.RoyaltyShare, len(req.RoyaltyRecipients))
		for i, recipientID := range req.RoyaltyRecipients {
			shares[i] = models.RoyaltyShare{
				TokenID:     tokenID,
				Position:    i,
				RecipientID: recipientID,
				ShareBps:    req.RoyaltyShareBps[i],
			}
		}
		if err := tx.SaveRoyaltyShares(shares); err != nil {
			return err
		}

		if err := tx.SaveMetadata(models.TokenMetadata{
			TokenID:       tokenID,
			BaseReference: req.BaseReference,
			LastUpdate:    now,
		}); err != nil {
			return err
		}

		if err := tx.SaveListing(models.Listing{
			TokenID:   tokenID,
			SellerID:  req.DestinationID,
			Price:     req.Price,
			Active:    true,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return s.emit(tx, models.EventListed, tokenID, map[string]any{
			"seller": req.DestinationID,
			"price":  req.Price,
		})
	})
	if err != nil {
		return 0, err
	}

	s.Logger.Infow("token criado e anunciado",
		"token_id", tokenID, "vendedor", req.DestinationID, "preco", req.Price)
	return tokenID, nil
}

// Purchase executa a compra de um token anunciado: valida as precondições,
// fecha o anúncio ANTES de qualquer movimentação externa, transfere a posse
// no ledger e distribui o preço entre vendedor, plataforma e beneficiários
// de royalty, com aritmética exata de basis points. O excedente do pagamento
// volta ao comprador.
func (s *MarketplaceService) Purchase(ctx context.Context, tokenID int64, buyerID string, payment int64) error {
	err := s.DB.Transact(func(tx storage.Store) error {
		token, found, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
		}
		listing, found, err := tx.GetListing(tokenID)
		if err != nil {
			return err
		}
		if !found || !listing.Active {
			return fmt.Errorf("%w: token %d", models.ErrNotListed, tokenID)
		}
		if payment < listing.Price {
			return fmt.Errorf("%w: ofertado %d, preço %d", models.ErrInsufficientPayment, payment, listing.Price)
		}
		if buyerID == listing.SellerID {
			return models.ErrSelfPurchase
		}
		buyer, found, err := tx.GetAccount(buyerID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: comprador %s", models.ErrAccountNotFound, buyerID)
		}
		seller, found, err := tx.GetAccount(listing.SellerID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: vendedor %s", models.ErrAccountNotFound, listing.SellerID)
		}

		cfg, err := tx.GetMarketplaceConfig()
		if err != nil {
			return err
		}
		shares, err := tx.GetRoyaltyShares(tokenID)
		if err != nil {
			return err
		}
		split := ComputeSaleSplit(listing.Price, cfg.FeeBps, models.TotalShareBps(shares))

		// Debita o pagamento integral do comprador antes de distribuir.
		ok, err := tx.DebitBalance(buyerID, payment)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: saldo do comprador não cobre o pagamento de %d", models.ErrInsufficientPayment, payment)
		}

		// Efeitos antes de interações: o anúncio fecha antes de qualquer
		// movimentação de fundos ou chamada externa, e nunca reabre.
		now := time.Now()
		if err := tx.DeactivateListing(tokenID, now); err != nil {
			return err
		}
		if err := tx.UpdateTokenOwner(tokenID, buyerID); err != nil {
			return err
		}

		// Posse on-chain. Falha aqui desfaz a compra inteira, anúncio incluso.
		if err := s.Ledger.Transfer(ctx, token.MintAddress, seller.SolanaPubKey, buyer.SolanaPubKey); err != nil {
			return fmt.Errorf("falha ao transferir posse no ledger: %w", err)
		}

		// Royalties: piso por beneficiário; a sobra fica retida no saldo não
		// distribuído do marketplace em vez de ir ao último beneficiário.
		if split.RoyaltyAmount > 0 {
			payouts, remainder := DistributeRoyalties(split.RoyaltyAmount, shares)
			for _, payout := range payouts {
				if payout.Amount > 0 {
					if err := tx.CreditBalance(payout.RecipientID, payout.Amount); err != nil {
						return err
					}
				}
			}
			if remainder > 0 {
				if err := tx.AddToUndistributed(remainder); err != nil {
					return err
				}
			}
		}

		if split.SellerAmount > 0 {
			if err := tx.CreditBalance(listing.SellerID, split.SellerAmount); err != nil {
				return err
			}
		}
		if split.FeeAmount > 0 {
			if err := tx.CreditBalance(cfg.OwnerAccountID, split.FeeAmount); err != nil {
				return err
			}
		}
		if refund := payment - listing.Price; refund > 0 {
			if err := tx.CreditBalance(buyerID, refund); err != nil {
				return err
			}
		}

		if err := s.emit(tx, models.EventSold, tokenID, map[string]any{
			"buyer":  buyerID,
			"seller": listing.SellerID,
			"price":  listing.Price,
		}); err != nil {
			return err
		}
		if split.RoyaltyAmount > 0 {
			if err := s.emit(tx, models.EventDistributed, tokenID, map[string]any{
				"royalty_total": split.RoyaltyAmount,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("compra concluída", "token_id", tokenID, "comprador", buyerID)
	return nil
}

// CancelListing fecha o anúncio a pedido do vendedor. O fechamento é
// definitivo: não existe reabertura neste desenho.
func (s *MarketplaceService) CancelListing(ctx context.Context, tokenID int64, callerID string) error {
	err := s.DB.Transact(func(tx storage.Store) error {
		if _, found, err := tx.GetToken(tokenID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
		}
		listing, found, err := tx.GetListing(tokenID)
		if err != nil {
			return err
		}
		if !found || !listing.Active {
			return fmt.Errorf("%w: token %d", models.ErrNotListed, tokenID)
		}
		if callerID != listing.SellerID {
			return fmt.Errorf("%w: apenas o vendedor pode cancelar", models.ErrNotAuthorized)
		}
		if err := tx.DeactivateListing(tokenID, time.Now()); err != nil {
			return err
		}
		return s.emit(tx, models.EventCancelled, tokenID, nil)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("anúncio cancelado", "token_id", tokenID)
	return nil
}

// UpdateMetadata muta os metadados de um token existente: substitui a
// referência base quando informada e faz upsert dos pares chave→valor
// (a última escrita por chave vence dentro da mesma chamada). Permitido só
// ao criador ou ao dono atual, com ou sem anúncio ativo.
func (s *MarketplaceService) UpdateMetadata(ctx context.Context, tokenID int64, callerID, newReference string, keys, values []string) error {
	if len(keys) != len(values) {
		return fmt.Errorf("%w: chaves e valores com tamanhos diferentes", models.ErrInvalidInput)
	}

	err := s.DB.Transact(func(tx storage.Store) error {
		token, found, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
		}
		if callerID != token.CreatorID && callerID != token.OwnerID {
			return fmt.Errorf("%w: apenas criador ou dono atual podem mutar metadados", models.ErrNotAuthorized)
		}

		if newReference != "" {
			if err := tx.SetBaseReference(tokenID, newReference); err != nil {
				return err
			}
		}

		// Colapsa chaves duplicadas na ordem de entrada: a última vence.
		final := make(map[string]string, len(keys))
		order := make([]string, 0, len(keys))
		for i, key := range keys {
			if _, seen := final[key]; !seen {
				order = append(order, key)
			}
			final[key] = values[i]
		}
		for _, key := range order {
			if err := tx.UpsertAttribute(tokenID, key, final[key]); err != nil {
				return err
			}
		}

		if err := tx.TouchMetadata(tokenID, time.Now()); err != nil {
			return err
		}
		return s.emit(tx, models.EventMetadataUpdated, tokenID, map[string]any{
			"base_reference": newReference,
		})
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("metadados atualizados", "token_id", tokenID, "chamador", callerID)
	return nil
}

// SetFeeRate atualiza a taxa do marketplace. Apenas o dono da plataforma;
// rejeita acima do teto de 10%.
func (s *MarketplaceService) SetFeeRate(ctx context.Context, callerID string, feeBps int64) error {
	if feeBps < 0 || feeBps > models.MaxFeeBps {
		return fmt.Errorf("%w: taxa %d bps fora do intervalo [0, %d]", models.ErrInvalidInput, feeBps, models.MaxFeeBps)
	}
	return s.DB.Transact(func(tx storage.Store) error {
		cfg, err := tx.GetMarketplaceConfig()
		if err != nil {
			return err
		}
		if callerID != cfg.OwnerAccountID {
			return fmt.Errorf("%w: apenas o dono da plataforma", models.ErrNotAuthorized)
		}
		return tx.SetFeeBps(feeBps)
	})
}

// Withdraw transfere todo o saldo não distribuído para a conta do dono da
// plataforma e retorna o valor sacado. A varredura do saldo é um único UPDATE
// atômico: de dois saques concorrentes, só um recebe valor; o outro encontra
// zero e é rejeitado.
func (s *MarketplaceService) Withdraw(ctx context.Context, callerID string) (int64, error) {
	var amount int64
	err := s.DB.Transact(func(tx storage.Store) error {
		cfg, err := tx.GetMarketplaceConfig()
		if err != nil {
			return err
		}
		if callerID != cfg.OwnerAccountID {
			return fmt.Errorf("%w: apenas o dono da plataforma", models.ErrNotAuthorized)
		}
		amount, err = tx.SweepUndistributed()
		if err != nil {
			return err
		}
		if amount == 0 {
			return models.ErrNothingToWithdraw
		}
		return tx.CreditBalance(cfg.OwnerAccountID, amount)
	})
	if err != nil {
		return 0, err
	}

	s.Logger.Infow("saldo não distribuído sacado", "valor", amount)
	return amount, nil
}

// GetListing retorna o anúncio de um token.
func (s *MarketplaceService) GetListing(ctx context.Context, tokenID int64) (models.Listing, error) {
	listing, found, err := s.DB.GetListing(tokenID)
	if err != nil {
		return models.Listing{}, err
	}
	if !found {
		return models.Listing{}, fmt.Errorf("%w: token %d", models.ErrNotListed, tokenID)
	}
	return listing, nil
}

// GetRoyaltyInfo retorna as participações de royalty de um token e a soma.
func (s *MarketplaceService) GetRoyaltyInfo(ctx context.Context, tokenID int64) (models.RoyaltyInfo, error) {
	if err := s.requireToken(tokenID); err != nil {
		return models.RoyaltyInfo{}, err
	}
	shares, err := s.DB.GetRoyaltyShares(tokenID)
	if err != nil {
		return models.RoyaltyInfo{}, err
	}
	return models.RoyaltyInfo{
		TokenID:  tokenID,
		Shares:   shares,
		TotalBps: models.TotalShareBps(shares),
	}, nil
}

// GetToken retorna o registro de um token (criador incluso).
func (s *MarketplaceService) GetToken(ctx context.Context, tokenID int64) (models.Token, error) {
	token, found, err := s.DB.GetToken(tokenID)
	if err != nil {
		return models.Token{}, err
	}
	if !found {
		return models.Token{}, fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
	}
	return token, nil
}

// GetMetadata retorna os metadados dinâmicos de um token.
func (s *MarketplaceService) GetMetadata(ctx context.Context, tokenID int64) (models.TokenMetadata, error) {
	metadata, found, err := s.DB.GetMetadata(tokenID)
	if err != nil {
		return models.TokenMetadata{}, err
	}
	if !found {
		return models.TokenMetadata{}, fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
	}
	return metadata, nil
}

// GetAttribute retorna o valor de um atributo de metadados.
func (s *MarketplaceService) GetAttribute(ctx context.Context, tokenID int64, key string) (string, error) {
	if err := s.requireToken(tokenID); err != nil {
		return "", err
	}
	value, found, err := s.DB.GetAttribute(tokenID, key)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return value, nil
}

// GetLastUpdate retorna o instante da última mutação dos metadados.
func (s *MarketplaceService) GetLastUpdate(ctx context.Context, tokenID int64) (time.Time, error) {
	metadata, err := s.GetMetadata(ctx, tokenID)
	if err != nil {
		return time.Time{}, err
	}
	return metadata.LastUpdate, nil
}

// TokenExists informa se um token já foi cunhado.
func (s *MarketplaceService) TokenExists(ctx context.Context, tokenID int64) (bool, error) {
	_, found, err := s.DB.GetToken(tokenID)
	return found, err
}

// TotalSupply retorna quantos tokens já foram cunhados.
func (s *MarketplaceService) TotalSupply(ctx context.Context) (int64, error) {
	return s.DB.CountTokens()
}

// GetFeeRate retorna a taxa corrente do marketplace em basis points.
func (s *MarketplaceService) GetFeeRate(ctx context.Context) (int64, error) {
	cfg, err := s.DB.GetMarketplaceConfig()
	if err != nil {
		return 0, err
	}
	return cfg.FeeBps, nil
}

// OwnershipReport compara o dono registrado internamente com o detentor
// on-chain do NFT.
type OwnershipReport struct {
	TokenID         int64  `json:"token_id"`
	InternalOwnerID string `json:"internal_owner_id"`
	OnChain         bool   `json:"on_chain"`
	OnChainOwner    string `json:"on_chain_owner,omitempty"`
	Listed          bool   `json:"listed"`
	Consistent      bool   `json:"consistent"`
}

// VerifyOwnership consulta o ledger e reporta se a posse on-chain bate com o
// registro interno. Enquanto o token está anunciado a unidade fica na custódia
// do marketplace, então um anúncio ativo conta como consistente mesmo com o
// detentor on-chain divergindo da carteira do dono.
func (s *MarketplaceService) VerifyOwnership(ctx context.Context, tokenID int64) (OwnershipReport, error) {
	token, found, err := s.DB.GetToken(tokenID)
	if err != nil {
		return OwnershipReport{}, err
	}
	if !found {
		return OwnershipReport{}, fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
	}

	report := OwnershipReport{TokenID: tokenID, InternalOwnerID: token.OwnerID}

	listing, found, err := s.DB.GetListing(tokenID)
	if err != nil {
		return OwnershipReport{}, err
	}
	report.Listed = found && listing.Active

	exists, err := s.Ledger.Exists(ctx, token.MintAddress)
	if err != nil {
		return OwnershipReport{}, fmt.Errorf("falha ao consultar existência do mint: %w", err)
	}
	if !exists {
		return report, nil
	}
	report.OnChain = true

	onChainOwner, found, err := s.Ledger.OwnerOf(ctx, token.MintAddress)
	if err != nil {
		return OwnershipReport{}, fmt.Errorf("falha ao consultar detentor on-chain: %w", err)
	}
	if !found {
		return report, nil
	}
	report.OnChainOwner = onChainOwner

	if report.Listed {
		report.Consistent = true
		return report, nil
	}
	owner, found, err := s.DB.GetAccount(token.OwnerID)
	if err != nil {
		return OwnershipReport{}, err
	}
	report.Consistent = found && owner.SolanaPubKey == onChainOwner
	return report, nil
}

// GetEvents lista as notificações emitidas para um token.
func (s *MarketplaceService) GetEvents(ctx context.Context, tokenID int64) ([]models.MarketEvent, error) {
	if err := s.requireToken(tokenID); err != nil {
		return nil, err
	}
	return s.DB.GetEventsByTokenID(tokenID)
}

func (s *MarketplaceService) requireToken(tokenID int64) error {
	_, found, err := s.DB.GetToken(tokenID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: token %d", models.ErrTokenNotFound, tokenID)
	}
	return nil
}

// emit persiste uma notificação do marketplace dentro da transação corrente.
func (s *MarketplaceService) emit(tx storage.Store, eventType string, tokenID int64, payload map[string]any) error {
	body := "{}"
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("falha ao codificar payload do evento: %w", err)
		}
		body = string(raw)
	}
	return tx.SaveEvent(models.MarketEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		TokenID:   tokenID,
		Payload:   body,
		CreatedAt: time.Now(),
	})
}
