package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"momentum/internal/models"
)

type quoteJSON struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  float64  `json:"close"`
	Volume *int64   `json:"volume"`
}

func toQuoteJSON(quotes []models.DailyQuote) []quoteJSON {
	out := make([]quoteJSON, len(quotes))
	for i, q := range quotes {
		out[i] = quoteJSON{
			Symbol: q.Symbol,
			Date:   q.Date.Format("2006-01-02"),
			Open:   q.Open,
			High:   q.High,
			Low:    q.Low,
			Close:  q.Close,
			Volume: q.Volume,
		}
	}
	return out
}

func (s *Server) handleLatestDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	latest, ok, err := s.quoteRepo.LatestDate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch latest quote date")
		writeError(w, http.StatusInternalServerError, "failed to fetch quotes")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no quote data available")
		return
	}

	limit := parseLimit(r, maxQueryLimit)
	quotes, err := s.quoteRepo.QuotesByDay(ctx, latest.Format("2006-01-02"), limit)
	if err != nil {
		log.Error().Err(err).Msg("fetch latest day quotes")
		writeError(w, http.StatusInternalServerError, "failed to fetch quotes")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(quotes))
}

func (s *Server) handleQuotesByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	limit := parseLimit(r, maxQueryLimit)
	quotes, err := s.quoteRepo.QuotesByDay(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("fetch quotes by day")
		writeError(w, http.StatusInternalServerError, "failed to fetch quotes")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(quotes))
}

func (s *Server) handleAvailableDays(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	days, err := s.quoteRepo.AvailableDays(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("fetch available days")
		writeError(w, http.StatusInternalServerError, "failed to fetch available days")
		return
	}
	if days == nil {
		days = []string{}
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleSymbolHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	if !validateSymbol(symbol) {
		writeError(w, http.StatusBadRequest, "invalid symbol")
		return
	}

	limit := parseLimit(r, 250)
	quotes, err := s.quoteRepo.SymbolHistory(r.Context(), symbol, limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("fetch symbol history")
		writeError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	if len(quotes) == 0 {
		writeError(w, http.StatusNotFound, "no history for symbol")
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(quotes))
}
