package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	ov, err := s.dashboard.Overview(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(ov))
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().UTC().Year())
	points, err := s.dashboard.MonthlySeries(r.Context(), auth.UserID(r.Context()), year)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]monthlyPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, monthlyPointResponse{
			Year:    p.Year,
			Month:   p.Month,
			Income:  toUnits(p.Income),
			Expense: toUnits(p.Expense),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDashboardCategories breaks one month down by category. Type defaults
// to EXPENSE, the chart the frontend always shows.
func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeBadRequest(w, "month must be between 1 and 12")
		return
	}

	typ := core.TransactionExpense
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ = core.TransactionType(strings.ToUpper(raw))
	}

	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}

	breakdown, err := s.dashboard.CategoryBreakdown(r.Context(), auth.UserID(r.Context()), typ, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]categoryAmountResponse, 0, len(breakdown))
	for _, c := range breakdown {
		out = append(out, categoryAmountResponse{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Color:      c.Color,
			Type:       string(c.Type),
			Amount:     toUnits(c.Amount),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
