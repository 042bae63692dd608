package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListAccounts(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	account := core.Account{
		Name:           strings.TrimSpace(req.Name),
		Type:           core.AccountType(strings.ToUpper(req.Type)),
		Currency:       core.Currency(strings.ToUpper(req.Currency)),
		InitialBalance: toCents(req.InitialBalance),
		OwnerID:        auth.UserID(r.Context()),
	}
	if err := account.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	s.dashboard.Invalidate(account.OwnerID)

	got, err := s.storage.GetAccount(r.Context(), account.OwnerID, created.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(got))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	account, err := s.storage.GetAccount(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// handleUpdateAccount changes name, type and initial balance. Currency is
// fixed at creation; transactions already booked in it must stay coherent.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ownerID := auth.UserID(r.Context())
	existing, err := s.storage.GetAccount(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Currency != "" && core.Currency(strings.ToUpper(req.Currency)) != existing.Currency {
		writeError(w, fmt.Errorf("%w: account currency cannot be changed", core.ErrValidation))
		return
	}

	account := core.Account{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		Type:           core.AccountType(strings.ToUpper(req.Type)),
		Currency:       existing.Currency,
		InitialBalance: toCents(req.InitialBalance),
		OwnerID:        ownerID,
	}
	if err := account.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.storage.UpdateAccount(r.Context(), account); err != nil {
		writeError(w, err)
		return
	}
	s.dashboard.Invalidate(ownerID)

	got, err := s.storage.GetAccount(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(got))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ownerID := auth.UserID(r.Context())
	if err := s.storage.DeleteAccount(r.Context(), ownerID, id); err != nil {
		writeError(w, err)
		return
	}
	s.dashboard.Invalidate(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}
