package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ferreirogomes/galeria/services"

	"github.com/go-chi/chi/v5"
)

// TokenHandler lida com requisições HTTP de criação, leitura e metadados de
// tokens.
type TokenHandler struct {
	Service *services.MarketplaceService
}

// NewTokenHandler cria uma nova instância do handler de tokens.
func NewTokenHandler(s *services.MarketplaceService) *TokenHandler {
	return &TokenHandler{Service: s}
}

// tokenIDParam extrai o ID numérico do token da URL.
func tokenIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// CreateAndListRequest é o corpo da criação de token.
type CreateAndListRequest struct {
	CreatorID         string   `json:"creator_id"`
	DestinationID     string   `json:"destination_id"`
	BaseReference     string   `json:"base_reference"`
	Price             int64    `json:"price"`
	RoyaltyRecipients []string `json:"royalty_recipients"`
	RoyaltyShareBps   []int64  `json:"royalty_share_bps"`
}

// CreateAndList cunha um token, configura royalties, inicializa metadados e
// abre o anúncio.
// POST /tokens
func (h *TokenHandler) CreateAndList(w http.ResponseWriter, r *http.Request) {
	var req CreateAndListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tokenID, err := h.Service.CreateAndList(r.Context(), services.CreateAndListRequest{
		CreatorID:         req.CreatorID,
		DestinationID:     req.DestinationID,
		BaseReference:     req.BaseReference,
		Price:             req.Price,
		RoyaltyRecipients: req.RoyaltyRecipients,
		RoyaltyShareBps:   req.RoyaltyShareBps,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"token_id": tokenID})
}

// GetTokenByID obtém um token pelo ID.
// GET /tokens/{id}
func (h *TokenHandler) GetTokenByID(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	token, err := h.Service.GetToken(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

// GetListing obtém o anúncio de um token.
// GET /tokens/{id}/listing
func (h *TokenHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	listing, err := h.Service.GetListing(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// GetRoyalties obtém as participações de royalty de um token.
// GET /tokens/{id}/royalties
func (h *TokenHandler) GetRoyalties(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	info, err := h.Service.GetRoyaltyInfo(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// GetMetadata obtém os metadados dinâmicos de um token.
// GET /tokens/{id}/metadata
func (h *TokenHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	metadata, err := h.Service.GetMetadata(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metadata)
}

// UpdateMetadataRequest é o corpo da mutação de metadados.
type UpdateMetadataRequest struct {
	CallerID      string   `json:"caller_id"`
	BaseReference string   `json:"base_reference"`
	Keys          []string `json:"keys"`
	Values        []string `json:"values"`
}

// UpdateMetadata muta a referência base e os atributos de um token.
// PUT /tokens/{id}/metadata
func (h *TokenHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	var req UpdateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Service.UpdateMetadata(r.Context(), tokenID, req.CallerID, req.BaseReference, req.Keys, req.Values)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "metadados atualizados"})
}

// GetAttribute obtém o valor de um atributo do token.
// GET /tokens/{id}/attributes/{key}
func (h *TokenHandler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	value, err := h.Service.GetAttribute(r.Context(), tokenID, chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"value": value})
}

// GetEvents lista os eventos emitidos para um token.
// GET /tokens/{id}/events
func (h *TokenHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	events, err := h.Service.GetEvents(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// GetLastUpdate retorna o instante da última mutação dos metadados.
// GET /tokens/{id}/last-update
func (h *TokenHandler) GetLastUpdate(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	lastUpdate, err := h.Service.GetLastUpdate(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"last_update": lastUpdate})
}

// GetExists informa se um token já foi cunhado.
// GET /tokens/{id}/exists
func (h *TokenHandler) GetExists(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	exists, err := h.Service.TokenExists(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// GetOwnership compara o dono interno com o detentor on-chain do NFT.
// GET /tokens/{id}/ownership
func (h *TokenHandler) GetOwnership(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		http.Error(w, "ID de token inválido", http.StatusBadRequest)
		return
	}
	report, err := h.Service.VerifyOwnership(r.Context(), tokenID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetSupply retorna o total de tokens já cunhados.
// GET /tokens/supply
func (h *TokenHandler) GetSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := h.Service.TotalSupply(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"total_supply": supply})
}
