package ledger

import (
	"fmt"

	"binance-ledger-go/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable trade ledger. Rows are keyed by the exchange
// order id; inserting an id that is already present is a no-op, which
// makes every sync safe to repeat.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of an already-migrated database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Exists reports whether a trade with the given id is already recorded.
func (s *Store) Exists(id int64) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Trade{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check trade %d: %w", id, err)
	}
	return count > 0, nil
}

// Insert persists a new trade. It returns false when a row with the
// same id already exists; the conflict is absorbed by the database so
// two overlapping syncs cannot produce a duplicate.
func (s *Store) Insert(trade *models.Trade) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(trade)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert trade %d: %w", trade.ID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// InsertBatch persists a batch of trades in a single transaction and
// returns how many were new. Already-present ids count as skips.
func (s *Store) InsertBatch(trades []models.Trade) (int, error) {
	added := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range trades {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&trades[i])
			if result.Error != nil {
				return fmt.Errorf("failed to insert trade %d: %w", trades[i].ID, result.Error)
			}
			added += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// ListAll returns recorded trades newest-first. A non-positive limit
// returns the whole ledger.
func (s *Store) ListAll(limit int) ([]models.Trade, error) {
	var trades []models.Trade
	query := s.db.Order("executed_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Count returns the number of recorded trades.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Trade{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}
