package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"binance-ledger-go/internal/binance"
	"binance-ledger-go/internal/models"
	"go.uber.org/zap"
)

// ErrUnconfigured is returned when a sync is attempted without API
// credentials. No partial work is done in that case.
var ErrUnconfigured = errors.New("binance API credentials are not configured")

// startDateLayout is the operator-facing calendar date format.
const startDateLayout = "2006-01-02"

// ConversionError marks a fill from the exchange that could not be
// mapped to a ledger row. It aborts the remaining fills of the call;
// rows committed earlier in the same call stay committed.
type ConversionError struct {
	OrderID int64
	Field   string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert fill %d: bad %s: %v", e.OrderID, e.Field, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// TradeFetcher is the slice of the exchange client the reconciler
// depends on.
type TradeFetcher interface {
	Configured() bool
	GetMyTrades(ctx context.Context, symbol string, startTime int64, limit int) ([]binance.AccountTrade, error)
}

// SymbolResult is the outcome of one per-symbol fetch. Keeping the
// error alongside the fills makes the skip policy explicit: the caller
// decides that a failed symbol is dropped, not a hidden recover.
type SymbolResult struct {
	Symbol string
	Trades []binance.AccountTrade
	Err    error
}

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	Added         int      `json:"added"`
	Skipped       int      `json:"skipped"`
	FailedSymbols []string `json:"failed_symbols,omitempty"`
}

// Reconciler merges exchange fills into the local ledger without
// duplication. It is safe to run repeatedly over overlapping windows.
type Reconciler struct {
	logger     *zap.Logger
	client     TradeFetcher
	store      *Store
	symbols    []string
	fetchLimit int
}

// NewReconciler creates a Reconciler. An empty symbols list means one
// unscoped account-trades request; otherwise one bounded request is
// issued per symbol.
func NewReconciler(logger *zap.Logger, client TradeFetcher, store *Store, symbols []string, fetchLimit int) *Reconciler {
	return &Reconciler{
		logger:     logger,
		client:     client,
		store:      store,
		symbols:    symbols,
		fetchLimit: fetchLimit,
	}
}

// Sync fetches fills since startDate (calendar date, "2006-01-02",
// empty for the exchange's default window) and inserts the ones not
// yet recorded. In multi-symbol mode a failed fetch for one symbol is
// skipped so the others still land; partial success is success.
func (r *Reconciler) Sync(ctx context.Context, startDate string) (SyncResult, error) {
	var result SyncResult

	if r.client == nil || !r.client.Configured() {
		return result, ErrUnconfigured
	}

	startTime, err := parseStartDate(startDate)
	if err != nil {
		return result, err
	}

	for _, fetch := range r.fetchAll(ctx, startTime) {
		if fetch.Err != nil {
			// Per-symbol degradation: log and move on. Only possible
			// in multi-symbol mode; fetchAll escalates the unscoped
			// single-request failure instead.
			if len(r.symbols) == 0 {
				return result, fetch.Err
			}
			r.logger.Warn("Skipping symbol after fetch failure",
				zap.String("symbol", fetch.Symbol),
				zap.Error(fetch.Err),
			)
			result.FailedSymbols = append(result.FailedSymbols, fetch.Symbol)
			continue
		}

		converted, err := convertFills(fetch.Trades)
		if err != nil {
			// Aborts the remaining symbols; batches committed above
			// stay in the ledger and a retry will skip them.
			return result, err
		}

		added, err := r.store.InsertBatch(converted)
		if err != nil {
			return result, err
		}
		result.Added += added
		result.Skipped += len(converted) - added
	}

	r.logger.Info("Sync finished",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Strings("failed_symbols", result.FailedSymbols),
	)
	return result, nil
}

// fetchAll issues the account-trades requests and collects one result
// per symbol (or a single unscoped result when no symbols are set).
func (r *Reconciler) fetchAll(ctx context.Context, startTime int64) []SymbolResult {
	if len(r.symbols) == 0 {
		trades, err := r.client.GetMyTrades(ctx, "", startTime, r.fetchLimit)
		return []SymbolResult{{Trades: trades, Err: err}}
	}

	results := make([]SymbolResult, 0, len(r.symbols))
	for _, symbol := range r.symbols {
		trades, err := r.client.GetMyTrades(ctx, symbol, startTime, r.fetchLimit)
		results = append(results, SymbolResult{Symbol: symbol, Trades: trades, Err: err})
	}
	return results
}

// parseStartDate turns an optional calendar date into exchange epoch
// milliseconds. Empty means no lower bound.
func parseStartDate(startDate string) (int64, error) {
	if startDate == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation(startDateLayout, startDate, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD): %w", startDate, err)
	}
	return t.UnixMilli(), nil
}

// convertFills maps exchange fills to ledger rows. The first bad fill
// aborts the rest of the batch.
func convertFills(fills []binance.AccountTrade) ([]models.Trade, error) {
	trades := make([]models.Trade, 0, len(fills))
	for _, fill := range fills {
		trade, err := convertFill(fill)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func convertFill(fill binance.AccountTrade) (models.Trade, error) {
	side := "SELL"
	if fill.IsBuyer {
		side = "BUY"
	}

	price, err := parseFillField(fill.OrderID, "price", fill.Price)
	if err != nil {
		return models.Trade{}, err
	}
	quantity, err := parseFillField(fill.OrderID, "qty", fill.Qty)
	if err != nil {
		return models.Trade{}, err
	}
	quoteQty, err := parseFillField(fill.OrderID, "quoteQty", fill.QuoteQty)
	if err != nil {
		return models.Trade{}, err
	}
	fee, err := parseFillField(fill.OrderID, "commission", fill.Commission)
	if err != nil {
		return models.Trade{}, err
	}

	return models.Trade{
		ID:            fill.OrderID,
		Symbol:        fill.Symbol,
		Side:          side,
		Price:         price,
		Quantity:      quantity,
		QuoteQuantity: quoteQty,
		Fee:           fee,
		FeeAsset:      fill.CommissionAsset,
		IsMaker:       fill.IsMaker,
		ExecutedAt:    time.UnixMilli(fill.Time),
	}, nil
}

func parseFillField(orderID int64, field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ConversionError{OrderID: orderID, Field: field, Err: err}
	}
	return v, nil
}
