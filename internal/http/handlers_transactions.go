package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/services"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		AccountID:  int64(queryInt(r, "account_id", 0)),
		CategoryID: int64(queryInt(r, "category_id", 0)),
		Type:       core.TransactionType(strings.ToUpper(q.Get("type"))),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "skip", 0),
	}
	if raw := q.Get("from"); raw != "" {
		var d core.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err != nil {
			writeBadRequest(w, "invalid from date, want YYYY-MM-DD")
			return
		}
		filter.From = d
	}
	if raw := q.Get("to"); raw != "" {
		var d core.Date
		if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err != nil {
			writeBadRequest(w, "invalid to date, want YYYY-MM-DD")
			return
		}
		filter.To = d
	}

	txns, err := s.transactions.List(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.transactions.Create(r.Context(), s.transactionFromRequest(r, req, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := s.transactions.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	updated, err := s.transactions.Update(r.Context(), s.transactionFromRequest(r, req, id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.transactions.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	svcReq := services.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        toCents(req.Amount),
		Description:   req.Description,
		Date:          req.Date,
	}
	if req.ConvertedAmount != nil {
		converted := toCents(*req.ConvertedAmount)
		svcReq.ConvertedAmount = &converted
	}

	tr, err := s.transfers.Transfer(r.Context(), auth.UserID(r.Context()), svcReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransferResponse(tr))
}

func (s *Server) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	table := s.rates.Rates()
	out := make(map[string]float64, len(table))
	for cur, rate := range table {
		out[string(cur)] = rate
	}
	writeJSON(w, http.StatusOK, out)
}

// transactionFromRequest maps the wire form onto the domain type. Omitted
// currency defaults to the account's; the service verifies the match either
// way. An omitted date means today.
func (s *Server) transactionFromRequest(r *http.Request, req transactionRequest, id int64) core.Transaction {
	ownerID := auth.UserID(r.Context())
	currency := core.Currency(strings.ToUpper(req.Currency))
	if req.Currency == "" {
		if account, err := s.storage.GetAccount(r.Context(), ownerID, req.AccountID); err == nil {
			currency = account.Currency
		}
	}
	date := req.Date
	if date.IsZero() {
		date = core.DateOf(time.Now())
	}
	return core.Transaction{
		ID:          id,
		Amount:      toCents(req.Amount),
		Type:        core.TransactionType(strings.ToUpper(req.Type)),
		Description: req.Description,
		Date:        date.Time,
		Currency:    currency,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		OwnerID:     ownerID,
	}
}
