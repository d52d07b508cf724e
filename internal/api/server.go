package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"momentum/internal/repository"
	"momentum/internal/strategy"
)

const maxQueryLimit = 1000

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Server struct {
	pool       *pgxpool.Pool
	quoteRepo  *repository.QuoteRepo
	logRepo    *repository.StrategyLogRepo
	httpServer *http.Server
	apiKey     string

	momentum     strategy.Params
	lookbackDays int
}

func NewServer(pool *pgxpool.Pool, port int, apiKey, corsOrigin string, momentum strategy.Params, lookbackDays int) *Server {
	s := &Server{
		pool:         pool,
		quoteRepo:    repository.NewQuoteRepo(pool),
		logRepo:      repository.NewStrategyLogRepo(pool),
		apiKey:       apiKey,
		momentum:     momentum,
		lookbackDays: lookbackDays,
	}

	mux := http.NewServeMux()

	// Quote routes
	mux.HandleFunc("GET /v1/quotes/latest", s.handleLatestDay)
	mux.HandleFunc("GET /v1/quotes/day/{date}", s.handleQuotesByDay)
	mux.HandleFunc("GET /v1/quotes/days", s.handleAvailableDays)
	mux.HandleFunc("GET /v1/quotes/{symbol}/history", s.handleSymbolHistory)

	// Strategy routes
	mux.HandleFunc("GET /v1/momentum/top", s.handleMomentumTop)
	mux.HandleFunc("GET /v1/strategy/log", s.handleStrategyLog)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Bool("auth", s.apiKey != "").Msg("REST API server started")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func validateSymbol(symbol string) bool {
	if symbol == "" || len(symbol) > 10 {
		return false
	}
	for _, c := range symbol {
		if (c < 'A' || c > 'Z') && c != '-' {
			return false
		}
	}
	return true
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
