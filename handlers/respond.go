package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ferreirogomes/galeria/models"
)

// respondJSON escreve o corpo JSON da resposta.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondError mapeia a taxonomia de erros do marketplace para status HTTP.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrTokenNotFound),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrNotListed):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientPayment),
		errors.Is(err, models.ErrSelfPurchase),
		errors.Is(err, models.ErrNothingToWithdraw):
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
