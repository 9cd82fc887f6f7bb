package order

import (
	"errors"
	"testing"

	"dinepos/internal/models"
)

func TestSubmitQRRejectsEmptyItems(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)

	_, err := SubmitQR(db, 1, QRInput{TableID: table.ID})
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got %v", err)
	}
}

func TestSubmitQRCreatesPendingProposal(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)

	qr, err := SubmitQR(db, 1, QRInput{
		TableID:      table.ID,
		CustomerName: "Walk-in",
		Items:        []ItemInput{burger(300, 2)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if qr.Status != models.QRPendingApproval {
		t.Fatalf("status = %s, want pending_approval", qr.Status)
	}
	if qr.Total != 600 {
		t.Fatalf("total = %d, want 600", qr.Total)
	}
	// A proposal never touches the table.
	if reloadTable(t, db, table.ID).Status != models.TableAvailable {
		t.Fatal("submitting a QR proposal must not occupy the table")
	}
}

func TestApproveQRCreatesOrderOnFreeTable(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)

	qr, err := SubmitQR(db, 1, QRInput{
		TableID:      table.ID,
		CustomerName: "Walk-in",
		Items:        []ItemInput{burger(300, 2)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	o, err := ApproveQR(db, 1, qr.ID, "waiter")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if o.Channel != models.ChannelQR {
		t.Fatalf("channel = %s, want qr", o.Channel)
	}
	if o.Status != models.StatusActive || o.Total != 600 {
		t.Fatalf("status=%s total=%d", o.Status, o.Total)
	}

	got := reloadTable(t, db, table.ID)
	if got.Status != models.TableOccupied || got.CurrentOrderID == nil || *got.CurrentOrderID != o.ID {
		t.Fatalf("table after approval: status=%s ref=%v", got.Status, got.CurrentOrderID)
	}

	var reloaded models.QROrder
	if err := db.First(&reloaded, qr.ID).Error; err != nil {
		t.Fatalf("reload qr: %v", err)
	}
	if reloaded.Status != models.QRApproved || reloaded.OrderID == nil || *reloaded.OrderID != o.ID {
		t.Fatalf("qr after approval: status=%s order=%v", reloaded.Status, reloaded.OrderID)
	}
}

func TestApproveQRAppendsToRunningBill(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)
	existing := mustCreate(t, db, 1, table.ID, burger(1000, 1))

	qr, err := SubmitQR(db, 1, QRInput{
		TableID: table.ID,
		Items:   []ItemInput{{Name: "Cola", UnitPrice: 200, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	merged, err := ApproveQR(db, 1, qr.ID, "waiter")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if merged.ID != existing.ID {
		t.Fatalf("approval created order %d, want merge into %d", merged.ID, existing.ID)
	}
	if len(merged.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(merged.Items))
	}
	if merged.SubTotal != 1200 || merged.AmountDue != 1200 {
		t.Fatalf("subtotal=%d due=%d", merged.SubTotal, merged.AmountDue)
	}

	var reloaded models.QROrder
	if err := db.First(&reloaded, qr.ID).Error; err != nil {
		t.Fatalf("reload qr: %v", err)
	}
	if reloaded.OrderID == nil || *reloaded.OrderID != existing.ID {
		t.Fatalf("qr order ref = %v, want %d", reloaded.OrderID, existing.ID)
	}
}

func TestApproveQROpensFreshOrderAfterBillSettled(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)
	existing := mustCreate(t, db, 1, table.ID, burger(1000, 1))

	qr, err := SubmitQR(db, 1, QRInput{
		TableID: table.ID,
		Items:   []ItemInput{burger(300, 1)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The bill closes between submission and approval. The approval must
	// fall back to a fresh order instead of appending to a closed one.
	if _, err := RequestTransition(db, 1, existing.ID, models.StatusPendingPayment, "tester"); err != nil {
		t.Fatalf("to pending_payment: %v", err)
	}
	if _, err := SettlePayment(db, 1, existing.ID, "Cash", 0, "tester"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	o, err := ApproveQR(db, 1, qr.ID, "waiter")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if o.ID == existing.ID {
		t.Fatal("approval appended to a settled order")
	}
	if o.Channel != models.ChannelQR || o.Total != 300 {
		t.Fatalf("channel=%s total=%d", o.Channel, o.Total)
	}

	got := reloadTable(t, db, table.ID)
	if got.Status != models.TableOccupied || got.CurrentOrderID == nil || *got.CurrentOrderID != o.ID {
		t.Fatalf("table after approval: status=%s ref=%v", got.Status, got.CurrentOrderID)
	}
}

func TestRejectQRLeavesOrdersAlone(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)

	qr, err := SubmitQR(db, 1, QRInput{
		TableID: table.ID,
		Items:   []ItemInput{burger(300, 1)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	rejected, err := RejectQR(db, 1, qr.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.QRRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if reloadTable(t, db, table.ID).Status != models.TableAvailable {
		t.Fatal("rejecting must not touch the table")
	}

	// Settled proposals cannot be approved afterwards.
	if _, err := ApproveQR(db, 1, qr.ID, "waiter"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestQRIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	table := seedTable(t, db, 1, 1)

	qr, err := SubmitQR(db, 1, QRInput{
		TableID: table.ID,
		Items:   []ItemInput{burger(300, 1)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := ApproveQR(db, 2, qr.ID, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign tenant, got %v", err)
	}
}
