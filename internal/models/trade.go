package models

import "time"

// Trade is one executed exchange fill recorded in the local ledger.
// Rows are keyed by the exchange-assigned order id and are immutable
// once stored; the sync path never updates or deletes them.
type Trade struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Symbol        string    `gorm:"size:20;not null" json:"symbol"`
	Side          string    `gorm:"size:10;not null" json:"side"` // "BUY" or "SELL"
	Price         float64   `gorm:"not null" json:"price"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	QuoteQuantity float64   `gorm:"not null" json:"quote_quantity"`
	Fee           float64   `gorm:"default:0" json:"fee"`
	FeeAsset      string    `gorm:"size:10" json:"fee_asset"`
	IsMaker       bool      `json:"is_maker"`
	UseBNB        bool      `gorm:"default:true" json:"use_bnb"`
	ExecutedAt    time.Time `gorm:"index" json:"executed_at"`
	Note          string    `gorm:"size:200" json:"note,omitempty"`
}
