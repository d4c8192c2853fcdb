package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ferreirogomes/galeria/services"
)

// MarketHandler lida com as operações de venda e com os controles do
// marketplace (taxa e saque do dono da plataforma).
type MarketHandler struct {
	Service *services.MarketplaceService
}

// NewMarketHandler cria uma nova instância do handler do marketplace.
func NewMarketHandler(s *services.MarketplaceService) *MarketHandler {
	return &MarketHandler{Service: s}
}

// PurchaseRequest é o corpo da compra.
type PurchaseRequest struct {
	TokenID int64  `json:"token_id"`
	BuyerID string `json:"buyer_id"`
	Payment int64  `json:"payment"`
}

// Purchase executa a compra de um token anunciado.
// POST /market/purchase
func (h *MarketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Purchase(r.Context(), req.TokenID, req.BuyerID, req.Payment); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "compra concluída"})
}

// CancelRequest é o corpo do cancelamento de anúncio.
type CancelRequest struct {
	TokenID  int64  `json:"token_id"`
	CallerID string `json:"caller_id"`
}

// Cancel fecha o anúncio de um token a pedido do vendedor.
// POST /market/cancel
func (h *MarketHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.CancelListing(r.Context(), req.TokenID, req.CallerID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "anúncio cancelado"})
}

// GetFeeRate retorna a taxa corrente do marketplace.
// GET /market/fee-rate
func (h *MarketHandler) GetFeeRate(w http.ResponseWriter, r *http.Request) {
	feeBps, err := h.Service.GetFeeRate(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"fee_bps": feeBps})
}

// SetFeeRateRequest é o corpo da atualização de taxa.
type SetFeeRateRequest struct {
	CallerID string `json:"caller_id"`
	FeeBps   int64  `json:"fee_bps"`
}

// SetFeeRate atualiza a taxa do marketplace (apenas o dono da plataforma).
// PUT /market/fee-rate
func (h *MarketHandler) SetFeeRate(w http.ResponseWriter, r *http.Request) {
	var req SetFeeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetFeeRate(r.Context(), req.CallerID, req.FeeBps); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"fee_bps": req.FeeBps})
}

// WithdrawRequest é o corpo do saque do saldo não distribuído.
type WithdrawRequest struct {
	CallerID string `json:"caller_id"`
}

// Withdraw saca o saldo não distribuído para a conta do dono da plataforma.
// POST /market/withdraw
func (h *MarketHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := h.Service.Withdraw(r.Context(), req.CallerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}
