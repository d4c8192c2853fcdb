package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ferreirogomes/galeria/services"

	"github.com/go-chi/chi/v5"
)

// AccountHandler lida com requisições HTTP de contas e saldos.
type AccountHandler struct {
	Service *services.AccountService
}

// NewAccountHandler cria uma nova instância do handler de contas.
func NewAccountHandler(s *services.AccountService) *AccountHandler {
	return &AccountHandler{Service: s}
}

// CreateAccount cria uma nova conta.
// POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		SolanaPubKey string `json:"solana_pub_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.Service.CreateAccount(r.Context(), req.Name, req.SolanaPubKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

// GetAccountByID obtém uma conta pelo ID.
// GET /accounts/{id}
func (h *AccountHandler) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	account, err := h.Service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// GetBalance obtém o saldo custodial de uma conta.
// GET /accounts/{id}/balance
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// Deposit credita lamports no saldo de uma conta.
// POST /accounts/{id}/deposit
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	balance, err := h.Service.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// GetAccountTokens lista os tokens cujo dono atual é a conta.
// GET /accounts/{id}/tokens
func (h *AccountHandler) GetAccountTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.Service.GetTokensByOwner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tokens)
}
