package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"binance-ledger-go/internal/config"
	"binance-ledger-go/internal/ledger"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log        *zap.Logger
	store      *ledger.Store
	reconciler *ledger.Reconciler
	cfg        *config.Ledger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store *ledger.Store, reconciler *ledger.Reconciler, cfg *config.Ledger) *APIHandler {
	return &APIHandler{log: log, store: store, reconciler: reconciler, cfg: cfg}
}

// TradesHandler returns recorded trades, newest first. An optional
// "limit" query parameter overrides the configured default.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.ListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	trades, err := h.store.ListAll(limit)
	if err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// SyncResponse is the structure for the /api/sync endpoint.
type SyncResponse struct {
	ledger.SyncResult
	Message string `json:"message"`
}

// SyncHandler triggers a reconciliation run. The optional "start_time"
// form value is a calendar date (YYYY-MM-DD) lower bound.
func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	startDate := r.FormValue("start_time")
	result, err := h.reconciler.Sync(r.Context(), startDate)
	if err != nil {
		h.log.Error("Sync failed", zap.Error(err))

		status := http.StatusBadGateway
		if errors.Is(err, ledger.ErrUnconfigured) {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(SyncResponse{
			SyncResult: result,
			Message:    fmt.Sprintf("Sync failed: %v", err),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SyncResponse{
		SyncResult: result,
		Message:    fmt.Sprintf("Sync finished, %d new trades", result.Added),
	})
}

// StatsResponse is the structure for the /api/stats endpoint.
type StatsResponse struct {
	ledger.Stats
	InitialCapital float64 `json:"initial_capital"`
}

// StatsHandler aggregates the whole ledger into the fee and profit
// summary. Figures are rounded for display only.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.ListAll(0)
	if err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	stats := ledger.ComputeStats(trades, h.cfg.InitialCapital)

	response := StatsResponse{
		Stats:          stats.Rounded(),
		InitialCapital: h.cfg.InitialCapital,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
