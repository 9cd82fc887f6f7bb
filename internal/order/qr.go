package order

import (
	"encoding/json"
	"errors"

	"dinepos/internal/models"

	"gorm.io/gorm"
)

// QR self-ordering. A scan produces a proposal, not an order; staff approval
// is the only bridge into the real lifecycle.

// QRInput is what an unauthenticated customer submits from the table QR code.
type QRInput struct {
	TableID        uint        `json:"table_id" binding:"required"`
	CustomerName   string      `json:"customer_name"`
	CustomerMobile string      `json:"customer_mobile"`
	Items          []ItemInput `json:"items"`
}

// SubmitQR stores a customer proposal in pending_approval.
func SubmitQR(db *gorm.DB, tenantID uint, in QRInput) (*models.QROrder, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	var table models.DiningTable
	err := db.Where("tenant_id = ?", tenantID).First(&table, in.TableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var total int64
	for _, it := range in.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	payload, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}

	qr := models.QROrder{
		TenantID:       tenantID,
		TableID:        in.TableID,
		CustomerName:   in.CustomerName,
		CustomerMobile: in.CustomerMobile,
		ItemsJSON:      string(payload),
		Total:          total,
		Status:         models.QRPendingApproval,
	}
	if err := db.Create(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

// ApproveQR turns a pending proposal into order state: if the table already
// has an open order the items join its running bill, otherwise a fresh order
// is created on the qr channel. The whole approval commits as one unit.
func ApproveQR(db *gorm.DB, tenantID, qrID uint, actor string) (*models.Order, error) {
	var result *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var qr models.QROrder
		err := forUpdate(tx).Where("tenant_id = ?", tenantID).First(&qr, qrID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if qr.Status != models.QRPendingApproval {
			return ErrInvalidState
		}

		var items []ItemInput
		if err := json.Unmarshal([]byte(qr.ItemsJSON), &items); err != nil {
			return err
		}

		// Lock the table so a bill closing concurrently cannot strand the
		// append branch; the decision between merge and fresh order has to
		// see a settled occupancy state.
		table, err := lockTable(tx, tenantID, qr.TableID)
		if err != nil {
			return err
		}
		if table.CurrentOrderID != nil {
			// Running bill on this table - consolidate the QR items into it.
			result, err = AppendItems(tx, tenantID, *table.CurrentOrderID, items, actor)
			if err != nil {
				return err
			}
			if err := appendAudit(tx, result.ID, "QR_APPROVED", actor, "qr items merged into running bill"); err != nil {
				return err
			}
		} else {
			result, err = Create(tx, tenantID, actor, CreateInput{
				TableID:        qr.TableID,
				Channel:        models.ChannelQR,
				CustomerName:   qr.CustomerName,
				CustomerMobile: qr.CustomerMobile,
				Items:          items,
			})
			if err != nil {
				return err
			}
		}

		qr.Status = models.QRApproved
		qr.OrderID = &result.ID
		return tx.Save(&qr).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectQR discards a pending proposal without side effects on any order.
func RejectQR(db *gorm.DB, tenantID, qrID uint) (*models.QROrder, error) {
	var qr models.QROrder
	err := db.Where("tenant_id = ?", tenantID).First(&qr, qrID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if qr.Status != models.QRPendingApproval {
		return nil, ErrInvalidState
	}
	qr.Status = models.QRRejected
	if err := db.Save(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}
