package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/accounts"
)

// AccountsHandler handles account management endpoints
type AccountsHandler struct {
	accounts *accounts.Service
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(accounts *accounts.Service) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context(), middleware.MustGetSession(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in accounts.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	summary, err := h.accounts.Create(r.Context(), middleware.MustGetSession(r.Context()), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Account{Message: "Account created successfully", Account: *summary})
}

// Update handles PUT /api/accounts/{id}
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in accounts.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	summary, err := h.accounts.Update(r.Context(), middleware.MustGetSession(r.Context()), accountID(r), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Account{Message: "Account updated successfully", Account: *summary})
}

// Delete handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), middleware.MustGetSession(r.Context()), accountID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Account deleted successfully"})
}

func accountID(r *http.Request) model.AccountID {
	return model.AccountID(mux.Vars(r)["id"])
}
