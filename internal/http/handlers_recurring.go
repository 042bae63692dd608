package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.recurring.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	activeOnly := r.URL.Query().Get("active_only") == "true"
	out := make([]recurringResponse, 0, len(schedules))
	for _, rt := range schedules {
		if activeOnly && !rt.IsActive {
			continue
		}
		out = append(out, toRecurringResponse(rt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.recurring.Create(r.Context(), s.recurringFromRequest(r, req, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringResponse(created))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rt, err := s.recurring.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringResponse(rt))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ownerID := auth.UserID(r.Context())
	existing, err := s.recurring.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	rt := s.recurringFromRequest(r, req, id)
	// The schedule position survives edits; only an explicit is_active flag
	// pauses or resumes it.
	rt.NextDueDate = existing.NextDueDate
	rt.IsActive = existing.IsActive
	if req.IsActive != nil {
		rt.IsActive = *req.IsActive
	}

	updated, err := s.recurring.Update(r.Context(), rt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringResponse(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.recurring.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	occurrence, err := s.recurring.ProcessOne(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(occurrence))
}

func (s *Server) handleProcessDue(w http.ResponseWriter, r *http.Request) {
	processed, err := s.recurring.ProcessDue(r.Context(), core.DateOf(time.Now()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

func (s *Server) recurringFromRequest(r *http.Request, req recurringRequest, id int64) core.RecurringTransaction {
	return core.RecurringTransaction{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Amount:      toCents(req.Amount),
		Type:        core.TransactionType(strings.ToUpper(req.Type)),
		Description: req.Description,
		Currency:    core.Currency(strings.ToUpper(req.Currency)),
		Frequency:   core.Frequency(strings.ToUpper(req.Frequency)),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		OwnerID:     auth.UserID(r.Context()),
	}
}
