// Package store provides owner-scoped persistence for holdings. Every
// query filters by owner id, so per-account isolation is enforced at the
// storage boundary rather than in callers.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

// ErrNotFound is returned when an id does not exist under the given owner.
var ErrNotFound = errors.New("holding not found")

type HoldingStore struct {
	db *gorm.DB
}

func NewHoldingStore(db *gorm.DB) *HoldingStore {
	return &HoldingStore{db: db}
}

// ListByOwner returns the owner's holdings in insertion order.
func (s *HoldingStore) ListByOwner(ownerID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// Get fetches a single holding scoped by owner.
func (s *HoldingStore) Get(id uint, ownerID string) (*models.Holding, error) {
	var h models.Holding
	err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Insert persists a new holding and assigns its id.
func (s *HoldingStore) Insert(h *models.Holding) error {
	return s.db.Create(h).Error
}

// InsertBatch inserts candidates one row at a time and reports how many were
// persisted. On failure the return value tells the caller exactly how far
// the batch got, so a partial import is never silent.
func (s *HoldingStore) InsertBatch(candidates []models.Holding) (int, error) {
	for i := range candidates {
		if err := s.db.Create(&candidates[i]).Error; err != nil {
			return i, err
		}
	}
	return len(candidates), nil
}

// Update applies the non-nil fields of req to the holding. Symbol and owner
// are immutable after creation and cannot be changed here.
func (s *HoldingStore) Update(id uint, ownerID string, req models.UpdateHoldingRequest) (*models.Holding, error) {
	h, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		h.Category = *req.Category
	}
	if req.Quantity != nil {
		h.Quantity = *req.Quantity
	}
	if req.BuyPrice != nil {
		h.BuyPrice = *req.BuyPrice
	}

	if err := s.db.Save(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes a holding scoped by owner.
func (s *HoldingStore) Delete(id uint, ownerID string) error {
	result := s.db.Where("owner_id = ?", ownerID).Delete(&models.Holding{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every holding for an owner. Used by callers that
// want replace semantics for an import: delete, then insert the new batch.
func (s *HoldingStore) DeleteByOwner(ownerID string) (int64, error) {
	result := s.db.Where("owner_id = ?", ownerID).Delete(&models.Holding{})
	return result.RowsAffected, result.Error
}

// DistinctOwners returns every owner id with at least one holding.
func (s *HoldingStore) DistinctOwners() ([]string, error) {
	var owners []string
	err := s.db.Model(&models.Holding{}).Distinct("owner_id").Order("owner_id ASC").Pluck("owner_id", &owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

// DistinctSymbols returns every symbol currently held by any owner.
func (s *HoldingStore) DistinctSymbols() ([]string, error) {
	var symbols []string
	err := s.db.Model(&models.Holding{}).Distinct("symbol").Order("symbol ASC").Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}
