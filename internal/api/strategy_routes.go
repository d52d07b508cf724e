package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"momentum/internal/strategy"
)

type candidateJSON struct {
	Symbol    string  `json:"symbol"`
	Momentum  float64 `json:"momentum"`
	LastClose float64 `json:"last_close"`
}

type positionLogJSON struct {
	Symbol   string `json:"symbol"`
	Qty      int64  `json:"qty"`
	Date     string `json:"date"`
	Strategy string `json:"strategy"`
}

// handleMomentumTop scores the warehouse on demand, same parameters as the
// trading run. Read-only: nothing is traded or logged here.
func (s *Server) handleMomentumTop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	since := time.Now().UTC().AddDate(0, 0, -s.lookbackDays)
	bars, err := s.quoteRepo.CloseHistory(ctx, since)
	if err != nil {
		log.Error().Err(err).Msg("load close history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "no close history available")
		return
	}

	ranked, err := strategy.Rank(bars, s.momentum)
	if err != nil {
		log.Error().Err(err).Msg("rank candidates")
		writeError(w, http.StatusInternalServerError, "failed to rank candidates")
		return
	}

	n := parseLimit(r, s.momentum.PortfolioSize)
	top := strategy.Top(ranked, n)

	out := make([]candidateJSON, len(top))
	for i, c := range top {
		out[i] = candidateJSON{Symbol: c.Symbol, Momentum: c.Momentum, LastClose: c.LastClose}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStrategyLog(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	entries, err := s.logRepo.History(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("fetch strategy log")
		writeError(w, http.StatusInternalServerError, "failed to fetch strategy log")
		return
	}

	out := make([]positionLogJSON, len(entries))
	for i, e := range entries {
		out[i] = positionLogJSON{
			Symbol:   e.Symbol,
			Qty:      e.Qty,
			Date:     e.Date.Format("2006-01-02"),
			Strategy: e.Strategy,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
