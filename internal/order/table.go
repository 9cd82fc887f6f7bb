package order

import (
	"errors"

	"dinepos/internal/models"

	"gorm.io/gorm"
)

// The occupancy tracker. The lifecycle engine is the only caller of occupy
// and release; nothing else may mutate a table's status or order reference,
// which keeps order state and table state from drifting apart.

func lockTable(tx *gorm.DB, tenantID, tableID uint) (*models.DiningTable, error) {
	var t models.DiningTable
	err := forUpdate(tx).
		Where("tenant_id = ?", tenantID).First(&t, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// occupy binds the table to an order. Caller must hold the row lock and have
// checked for a conflicting occupant.
func occupy(tx *gorm.DB, t *models.DiningTable, orderID uint) error {
	t.Status = models.TableOccupied
	t.CurrentOrderID = &orderID
	return tx.Save(t).Error
}

// release frees the table. Idempotent: releasing an already-available table
// is a no-op, not an error.
func release(tx *gorm.DB, tenantID, tableID uint) error {
	return tx.Model(&models.DiningTable{}).
		Where("tenant_id = ? AND id = ?", tenantID, tableID).
		Updates(map[string]interface{}{
			"status":           models.TableAvailable,
			"current_order_id": nil,
		}).Error
}
