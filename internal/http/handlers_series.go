package http

import (
	"errors"
	"log/slog"
	"net/http"

	"housefund/internal/core"
	"housefund/internal/services"
)

const (
	categorySeriesKey = "categories"
	monthSeriesKey    = "months"
)

type seriesPoint struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// handleCategorySeries returns spending per category as chart data.
func (s *Server) handleCategorySeries(w http.ResponseWriter, r *http.Request) {
	if points, found := s.categoryCache.Get(categorySeriesKey); found {
		writeJSON(w, http.StatusOK, toSeries(points, func(ca core.CategoryAmount) (string, core.Money) {
			return string(ca.Category), ca.Amount
		}))
		return
	}

	totals, err := s.accounts.CategoryTotals(r.Context())
	if err != nil && !errors.Is(err, services.ErrNoOwner) {
		slog.ErrorContext(r.Context(), "Failed to compute category totals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute series"})
		return
	}

	s.categoryCache.Set(categorySeriesKey, totals)
	writeJSON(w, http.StatusOK, toSeries(totals, func(ca core.CategoryAmount) (string, core.Money) {
		return string(ca.Category), ca.Amount
	}))
}

// handleMonthSeries returns spending per calendar month as chart data.
func (s *Server) handleMonthSeries(w http.ResponseWriter, r *http.Request) {
	if points, found := s.monthCache.Get(monthSeriesKey); found {
		writeJSON(w, http.StatusOK, toSeries(points, func(ma core.MonthAmount) (string, core.Money) {
			return ma.Month, ma.Amount
		}))
		return
	}

	totals, err := s.accounts.MonthlyTotals(r.Context())
	if err != nil && !errors.Is(err, services.ErrNoOwner) {
		slog.ErrorContext(r.Context(), "Failed to compute monthly totals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute series"})
		return
	}

	s.monthCache.Set(monthSeriesKey, totals)
	writeJSON(w, http.StatusOK, toSeries(totals, func(ma core.MonthAmount) (string, core.Money) {
		return ma.Month, ma.Amount
	}))
}

func toSeries[T any](items []T, point func(T) (string, core.Money)) []seriesPoint {
	out := make([]seriesPoint, 0, len(items))
	for _, item := range items {
		label, amount := point(item)
		out = append(out, seriesPoint{Label: label, Amount: amount.Float()})
	}
	return out
}
