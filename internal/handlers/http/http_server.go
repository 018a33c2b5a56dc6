package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/useCases"
	"nftStatApp/internal/lib/logger/sl"

	json "github.com/goccy/go-json"
)

const defaultRankingCount = 10

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Server represents an HTTP server with all routes configured
type Server struct {
	analytics   useCases.AnalyticsQuerier
	broadcaster useCases.Broadcaster
	archive     useCases.ArchiveReader // nil when the archive is disabled
	checks      map[string]HealthCheck
	mux         *http.ServeMux
	server      *http.Server
	log         *slog.Logger
}

// NewServer creates a new HTTP server with configured routes
func NewServer(
	log *slog.Logger,
	addr string,
	analytics useCases.AnalyticsQuerier,
	broadcaster useCases.Broadcaster,
	archive useCases.ArchiveReader,
	checks map[string]HealthCheck,
) *Server {
	mux := http.NewServeMux()

	server := &Server{
		analytics:   analytics,
		broadcaster: broadcaster,
		archive:     archive,
		checks:      checks,
		mux:         mux,
		log:         log.With(slog.String("component", "http")),
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	server.registerRoutes()

	return server
}

// registerRoutes configures all HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /transactions", s.handleTransactions)
	s.mux.HandleFunc("GET /history/{assetId}", s.handleHistory)
	s.mux.HandleFunc("GET /rankings/top-selling", s.handleTopSelling)
	s.mux.HandleFunc("GET /rankings/most-valuable", s.handleMostValuable)
	s.mux.HandleFunc("GET /rarity/sales", s.handleSalesByRarity)
	s.mux.HandleFunc("GET /rarity/average-price", s.handleAveragePriceByRarity)
	s.mux.HandleFunc("GET /archive", s.handleArchive)

	if s.broadcaster != nil {
		s.mux.HandleFunc("/ws", s.broadcaster.Handler())
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", sl.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth runs every registered dependency check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := map[string]string{"status": "ok"}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result["status"] = "degraded"
			result[name] = err.Error()
			continue
		}
		result[name] = "ok"
	}
	s.writeJSON(w, status, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, dto.FromGlobalStats(s.analytics.GlobalStats()))
}

// handleTransactions serves the live log. Filters combine:
// ?user=&seller=&buyer= selects by address, ?asset= and ?kind= narrow further.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		kind    model.TransactionKind
		hasKind bool
	)
	if k := q.Get("kind"); k != "" {
		parsed, err := model.ParseTransactionKind(k)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind, hasKind = parsed, true
	}
	asset := q.Get("asset")
	user := q.Get("user")

	var txs []model.TransactionRecord
	switch {
	case user != "":
		asSeller, asBuyer := true, true
		if q.Has("seller") || q.Has("buyer") {
			asSeller = parseBool(q.Get("seller"))
			asBuyer = parseBool(q.Get("buyer"))
		}
		txs = s.analytics.TransactionsByUser(user, asSeller, asBuyer)
	case asset != "":
		txs = s.analytics.TransactionsByAsset(asset)
	case hasKind:
		txs = s.analytics.TransactionsByKind(kind)
	default:
		txs = s.analytics.AllTransactions()
	}

	filtered := txs[:0]
	for _, tx := range txs {
		if asset != "" && tx.AssetID != asset {
			continue
		}
		if hasKind && tx.Kind != kind {
			continue
		}
		filtered = append(filtered, tx)
	}

	s.writeJSON(w, http.StatusOK, dto.FromTransactions(filtered))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	assetID := r.PathValue("assetId")
	history, ok := s.analytics.PriceHistory(assetID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no price history for asset "+assetID)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromPriceHistory(history))
}

func (s *Server) handleTopSelling(w http.ResponseWriter, r *http.Request) {
	count, ok := s.countParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromPriceHistories(s.analytics.TopSellingAssets(count)))
}

func (s *Server) handleMostValuable(w http.ResponseWriter, r *http.Request) {
	count, ok := s.countParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromPriceHistories(s.analytics.MostValuableAssets(count)))
}

func (s *Server) handleSalesByRarity(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, dto.FromSalesByRarity(s.analytics.SalesByRarity()))
}

func (s *Server) handleAveragePriceByRarity(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, dto.FromAveragePriceByRarity(s.analytics.AveragePriceByRarity()))
}

// handleArchive serves archived transactions since ?since= (unix seconds, default last 24h)
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusServiceUnavailable, "transaction archive is disabled")
		return
	}

	since := time.Now().Add(-24 * time.Hour).Unix()
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "since must be a unix timestamp")
			return
		}
		since = parsed
	}

	txs, err := s.archive.GetTransactionsSince(r.Context(), since)
	if err != nil {
		s.log.Error("archive query failed", slog.Int64("since", since), sl.Err(err))
		s.writeError(w, http.StatusInternalServerError, "failed to query archive")
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromArchived(txs))
}

func (s *Server) countParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("count")
	if v == "" {
		return defaultRankingCount, true
	}
	count, err := strconv.Atoi(v)
	if err != nil || count < 0 {
		s.writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
		return 0, false
	}
	return count, true
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
