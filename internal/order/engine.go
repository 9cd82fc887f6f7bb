package order

import (
	"errors"
	"fmt"
	"time"

	"dinepos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemInput is one requested line item.
type ItemInput struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Modifiers string `json:"modifiers"`
	Notes     string `json:"notes"`
}

// CreateInput carries everything needed to open an order on a table.
type CreateInput struct {
	TableID        uint           `json:"table_id" binding:"required"`
	Channel        models.Channel `json:"channel"`
	CustomerName   string         `json:"customer_name"`
	CustomerMobile string         `json:"customer_mobile"`
	Items          []ItemInput    `json:"items"`
	SubTotal       int64          `json:"sub_total"`
	Tax            int64          `json:"tax"`
	Discount       int64          `json:"discount"`
}

// Create opens a new order in 'active' state, assigns the next sequential
// order number for the tenant and occupies the table. The counter bump, the
// order insert and the table update commit together or not at all.
func Create(db *gorm.DB, tenantID uint, actor string, in CreateInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if in.Channel == "" {
		in.Channel = models.ChannelDineIn
	}

	subTotal := in.SubTotal
	if subTotal == 0 {
		for _, it := range in.Items {
			subTotal += it.UnitPrice * int64(it.Quantity)
		}
	}
	total := subTotal + in.Tax - in.Discount
	if total < 0 {
		return nil, ErrNegativeTotal
	}

	var created models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, tenantID, in.TableID)
		if err != nil {
			return err
		}
		if table.CurrentOrderID != nil {
			return ErrTableConflict
		}

		number, err := nextOrderNumber(tx, tenantID)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.OrderItem{
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
				Modifiers: it.Modifiers,
				Notes:     it.Notes,
			})
		}

		created = models.Order{
			TenantID:       tenantID,
			TableID:        table.ID,
			OrderNumber:    number,
			Channel:        in.Channel,
			Status:         models.StatusActive,
			CustomerName:   in.CustomerName,
			CustomerMobile: in.CustomerMobile,
			SubTotal:       subTotal,
			Tax:            in.Tax,
			Discount:       in.Discount,
			Total:          total,
			AmountDue:      total,
			Items:          items, // GORM inserts these with the header
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		if err := appendAudit(tx, created.ID, "ORDER_CREATED", actor,
			fmt.Sprintf("order #%d opened on table %d", number, table.Number)); err != nil {
			return err
		}
		return occupy(tx, table, created.ID)
	})
	if err != nil {
		return nil, err
	}
	return Get(db, tenantID, created.ID)
}

// Get loads a single order with its items, payments and audit trail.
func Get(db *gorm.DB, tenantID, orderID uint) (*models.Order, error) {
	var o models.Order
	err := db.Preload("Items").Preload("Payments").Preload("Audits").
		Where("tenant_id = ?", tenantID).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns the tenant's orders, newest first.
func List(db *gorm.DB, tenantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Items").Where("tenant_id = ?", tenantID).
		Order("created_at desc").Find(&orders).Error
	return orders, err
}

// RequestTransition moves an order along the state machine. Reaching a
// terminal state releases the table in the same transaction, so the two
// can never disagree about occupancy.
func RequestTransition(db *gorm.DB, tenantID, orderID uint, target models.OrderStatus, actor string) (*models.Order, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, target) {
			return &InvalidTransitionError{From: o.Status, To: target}
		}

		from := o.Status
		o.Status = target
		if target == models.StatusClosed {
			now := time.Now()
			o.ClosedAt = &now
		}
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if err := appendAudit(tx, o.ID, "STATUS_CHANGED", actor,
			fmt.Sprintf("%s -> %s", from, target)); err != nil {
			return err
		}
		if Terminal(target) {
			if err := release(tx, tenantID, o.TableID); err != nil {
				return err
			}
		}
		if target == models.StatusCancelled {
			return tx.Delete(o).Error // soft delete, kept for audit retention
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return getEvenDeleted(db, tenantID, orderID)
}

// SettlePayment records full payment and closes the order. Only valid from
// pending_payment; amount 0 means "the outstanding balance", and an explicit
// amount must cover it.
func SettlePayment(db *gorm.DB, tenantID, orderID uint, method string, amount int64, actor string) (*models.Order, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Status != models.StatusPendingPayment {
			return ErrInvalidState
		}
		if amount < 0 {
			return ErrInvalidState
		}
		if amount == 0 {
			amount = o.AmountDue
		} else if amount < o.AmountDue {
			// Settlement clears the bill in full. Short amounts belong in
			// RecordPartialPayment, which leaves the order open.
			return ErrInvalidState
		}

		now := time.Now()
		if amount > 0 {
			payment := models.Payment{OrderID: o.ID, Method: method, Amount: amount, PaidAt: now}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}
		paid, err := sumPayments(tx, o.ID)
		if err != nil {
			return err
		}

		o.Status = models.StatusClosed
		o.PaymentMethod = method
		o.AmountPaid = paid
		o.AmountDue = dueBalance(o.Total, paid)
		o.ClosedAt = &now
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if err := appendAudit(tx, o.ID, "PAYMENT_SETTLED", actor,
			fmt.Sprintf("%s %d settled", method, amount)); err != nil {
			return err
		}
		return release(tx, tenantID, o.TableID)
	})
	if err != nil {
		return nil, err
	}
	return Get(db, tenantID, orderID)
}

// Cancel abandons an order from any non-terminal state. The row is soft
// deleted so the audit trail survives.
func Cancel(db *gorm.DB, tenantID, orderID uint, reason, actor string) (*models.Order, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if Terminal(o.Status) {
			return ErrInvalidState
		}

		o.Status = models.StatusCancelled
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if reason == "" {
			reason = "no reason given"
		}
		if err := appendAudit(tx, o.ID, "ORDER_CANCELLED", actor, reason); err != nil {
			return err
		}
		if err := release(tx, tenantID, o.TableID); err != nil {
			return err
		}
		return tx.Delete(o).Error
	})
	if err != nil {
		return nil, err
	}
	return getEvenDeleted(db, tenantID, orderID)
}

// updatableFields is the whitelist for UpdateFields. Status is deliberately
// absent - status only moves through RequestTransition.
var updatableFields = map[string]bool{
	"customer_name":   true,
	"customer_mobile": true,
	"channel":         true,
	"payment_method":  true,
	"sub_total":       true,
	"tax":             true,
	"discount":        true,
}

// UpdateFields patches non-status fields. Monetary edits recompute the total
// and due balance; the state machine and table occupancy are never touched.
func UpdateFields(db *gorm.DB, tenantID, orderID uint, patch map[string]interface{}, actor string) (*models.Order, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if Terminal(o.Status) {
			return ErrInvalidState
		}

		updates := map[string]interface{}{}
		money := false
		for k, v := range patch {
			if !updatableFields[k] {
				continue
			}
			if k == "sub_total" || k == "tax" || k == "discount" {
				money = true
				updates[k] = asInt64(v)
			} else {
				updates[k] = v
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if money {
			subTotal, tax, discount := o.SubTotal, o.Tax, o.Discount
			if v, ok := updates["sub_total"]; ok {
				subTotal = v.(int64)
			}
			if v, ok := updates["tax"]; ok {
				tax = v.(int64)
			}
			if v, ok := updates["discount"]; ok {
				discount = v.(int64)
			}
			total := subTotal + tax - discount
			if total < 0 {
				return ErrNegativeTotal
			}
			updates["total"] = total
			updates["amount_due"] = dueBalance(total, o.AmountPaid)
		}
		if err := tx.Model(o).Updates(updates).Error; err != nil {
			return err
		}
		return appendAudit(tx, o.ID, "ORDER_UPDATED", actor, fmt.Sprintf("%d field(s) changed", len(updates)))
	})
	if err != nil {
		return nil, err
	}
	return Get(db, tenantID, orderID)
}

// AppendItems adds lines to a running order mid-meal and bumps the totals.
func AppendItems(db *gorm.DB, tenantID, orderID uint, items []ItemInput, actor string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if Terminal(o.Status) {
			return ErrInvalidState
		}

		var added int64
		for _, it := range items {
			row := models.OrderItem{
				OrderID:   o.ID,
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
				Modifiers: it.Modifiers,
				Notes:     it.Notes,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			added += it.UnitPrice * int64(it.Quantity)
		}

		o.SubTotal += added
		o.Total = o.SubTotal + o.Tax - o.Discount
		o.AmountDue = dueBalance(o.Total, o.AmountPaid)
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		return appendAudit(tx, o.ID, "ITEMS_ADDED", actor, fmt.Sprintf("%d item(s) added", len(items)))
	})
	if err != nil {
		return nil, err
	}
	return Get(db, tenantID, orderID)
}

// --- internals ---

// forUpdate applies a row lock where the dialect supports it. SQLite has no
// FOR UPDATE syntax; its single-writer model gives the same guarantee.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// nextOrderNumber bumps the tenant's counter under a row lock, so two
// concurrent creates can never read the same number. Gaps are fine; reuse
// is not.
func nextOrderNumber(tx *gorm.DB, tenantID uint) (int64, error) {
	// Seed the row with an upsert first. A plain read-then-insert races when
	// two transactions open the tenant's first orders at once: a locked read
	// of a missing row locks nothing, and the loser's insert hits the unique
	// index on tenant_id.
	seed := models.OrderCounter{TenantID: tenantID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}
	var counter models.OrderCounter
	if err := forUpdate(tx).
		Where("tenant_id = ?", tenantID).First(&counter).Error; err != nil {
		return 0, err
	}
	counter.LastNumber++
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}

func lockOrder(tx *gorm.DB, tenantID, orderID uint) (*models.Order, error) {
	var o models.Order
	err := forUpdate(tx).
		Where("tenant_id = ?", tenantID).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// getEvenDeleted reloads an order including soft-deleted rows, for returning
// the final state of a cancelled order.
func getEvenDeleted(db *gorm.DB, tenantID, orderID uint) (*models.Order, error) {
	var o models.Order
	err := db.Unscoped().Preload("Items").Preload("Payments").Preload("Audits").
		Where("tenant_id = ?", tenantID).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func appendAudit(tx *gorm.DB, orderID uint, action, actor, detail string) error {
	entry := models.OrderAudit{OrderID: orderID, Action: action, Actor: actor, Detail: detail}
	return tx.Create(&entry).Error
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64: // JSON numbers arrive as float64
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
