package order

import (
	"fmt"
	"time"

	"dinepos/internal/models"

	"gorm.io/gorm"
)

// The settlement ledger. Partial payments accumulate against an order's due
// balance without moving the state machine; only SettlePayment closes.

// RecordPartialPayment appends a ledger row and recomputes the paid and due
// amounts. The order may be in any non-terminal state.
func RecordPartialPayment(db *gorm.DB, tenantID, orderID uint, method string, amount int64, actor string) (*models.Order, error) {
	if amount <= 0 {
		return nil, ErrInvalidState
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if Terminal(o.Status) {
			return ErrInvalidState
		}

		payment := models.Payment{OrderID: o.ID, Method: method, Amount: amount, PaidAt: time.Now()}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		paid, err := sumPayments(tx, o.ID)
		if err != nil {
			return err
		}
		o.AmountPaid = paid
		o.AmountDue = dueBalance(o.Total, paid)
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		return appendAudit(tx, o.ID, "PAYMENT_RECORDED", actor,
			fmt.Sprintf("%s %d recorded, due %d", method, amount, o.AmountDue))
	})
	if err != nil {
		return nil, err
	}
	return Get(db, tenantID, orderID)
}

func sumPayments(tx *gorm.DB, orderID uint) (int64, error) {
	var paid int64
	err := tx.Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	return paid, err
}

// dueBalance floors at zero: overpayment never produces a negative debt.
func dueBalance(total, paid int64) int64 {
	if due := total - paid; due > 0 {
		return due
	}
	return 0
}
