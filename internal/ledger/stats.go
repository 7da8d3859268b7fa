package ledger

import (
	"math"

	"binance-ledger-go/internal/models"
)

// Stats aggregates the whole ledger. RealizedPnL is a cash-flow
// approximation: SELL proceeds net of fees minus BUY cost including
// fees, without matching lots and without converting between quote
// assets. It is not true realized profit and is reported as-is.
type Stats struct {
	Count          int64   `json:"count"`
	TotalFee       float64 `json:"total_fee"`
	FeeDragPercent float64 `json:"fee_drag_percent"`
	RealizedPnL    float64 `json:"realized_pnl"`
}

// ComputeStats sums fees and notional cash flow over all trades.
// initialCapital is the reference base for the fee-drag percentage;
// a non-positive value yields 0 rather than a division error.
func ComputeStats(trades []models.Trade, initialCapital float64) Stats {
	stats := Stats{Count: int64(len(trades))}

	var cost, income float64
	for _, t := range trades {
		stats.TotalFee += t.Fee
		switch t.Side {
		case "BUY":
			cost += t.QuoteQuantity + t.Fee
		case "SELL":
			income += t.QuoteQuantity - t.Fee
		}
	}
	stats.RealizedPnL = income - cost

	if initialCapital > 0 {
		stats.FeeDragPercent = stats.TotalFee / initialCapital * 100
	}

	return stats
}

// Rounded returns a display copy. Stored values keep full precision;
// only the reported figures are truncated.
func (s Stats) Rounded() Stats {
	return Stats{
		Count:          s.Count,
		TotalFee:       roundTo(s.TotalFee, 4),
		FeeDragPercent: roundTo(s.FeeDragPercent, 4),
		RealizedPnL:    roundTo(s.RealizedPnL, 2),
	}
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
