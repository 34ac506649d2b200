package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tornearia/internal/db"
	"tornearia/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return date(y, m, d) }
}

func seedItem(t *testing.T, conn *gorm.DB, kind models.ItemKind, name string, price string, stock int) models.Item {
	t.Helper()
	item := models.Item{
		Kind:     kind,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		StockQty: stock,
		Active:   true,
	}
	if err := conn.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func seedClient(t *testing.T, conn *gorm.DB, name, email string) models.Client {
	t.Helper()
	c := models.Client{Name: name, Email: email, Active: true}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func mustCreateSale(t *testing.T, svc *SaleService, in SaleInput) *models.Sale {
	t.Helper()
	sale, err := svc.Create(in)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	return sale
}

func TestSaleNumberingSequence(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)

	for i := 1; i <= 3; i++ {
		sale := mustCreateSale(t, svc, SaleInput{
			EntryDate: date(2024, 1, 10),
			Items:     []LineInput{{ItemID: item.ID, Quantity: 1}},
		})
		want := fmt.Sprintf("VND%05d", i)
		if sale.Number != want {
			t.Fatalf("sale %d: number = %q, want %q", i, sale.Number, want)
		}
	}
}

func TestInstallmentPlanSplitsTotal(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "300.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate:        date(2024, 1, 15),
		PaymentKind:      models.PaymentInstallments,
		InstallmentCount: 3,
		Items:            []LineInput{{ItemID: item.ID, Quantity: 1}},
	})

	if len(sale.Installments) != 3 {
		t.Fatalf("installments = %d, want 3", len(sale.Installments))
	}
	wantDue := []time.Time{date(2024, 1, 15), date(2024, 2, 15), date(2024, 3, 15)}
	for i, inst := range sale.Installments {
		if !inst.Amount.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("installment %d amount = %s, want 100", i+1, inst.Amount)
		}
		if !inst.DueDate.Equal(wantDue[i]) {
			t.Errorf("installment %d due = %s, want %s", i+1, inst.DueDate, wantDue[i])
		}
		if inst.Paid || inst.PaymentDate != nil {
			t.Errorf("installment %d should start unpaid", i+1)
		}
		if inst.Number != i+1 {
			t.Errorf("installment %d number = %d", i+1, inst.Number)
		}
	}
}

func TestSinglePaymentProducesOneInstallment(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Solda", "150.50", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 2, 1),
		Items:     []LineInput{{ItemID: item.ID, Quantity: 1}},
	})
	if len(sale.Installments) != 1 {
		t.Fatalf("installments = %d, want 1", len(sale.Installments))
	}
	inst := sale.Installments[0]
	if !inst.Amount.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("amount = %s, want 150.50", inst.Amount)
	}
	if !inst.DueDate.Equal(date(2024, 2, 1)) {
		t.Errorf("due = %s, want entry date", inst.DueDate)
	}
}

func TestPlanKindWithCountOneActsAsSingle(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Fresagem", "90.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate:        date(2024, 2, 1),
		PaymentKind:      models.PaymentInstallments,
		InstallmentCount: 1,
		Items:            []LineInput{{ItemID: item.ID, Quantity: 1}},
	})
	if len(sale.Installments) != 1 {
		t.Fatalf("installments = %d, want 1", len(sale.Installments))
	}
}

func TestRegenerateDiscardsPaidRows(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Torno", "200.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate:        date(2024, 1, 10),
		PaymentKind:      models.PaymentInstallments,
		InstallmentCount: 2,
		Items:            []LineInput{{ItemID: item.ID, Quantity: 1}},
	})
	if _, err := svc.PayInstallment(sale.Installments[0].ID); err != nil {
		t.Fatalf("pay: %v", err)
	}

	sale, err := svc.RegenerateInstallments(sale.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	for _, inst := range sale.Installments {
		if inst.Paid {
			t.Errorf("installment %d kept paid state across regeneration", inst.Number)
		}
	}
}

func TestCompleteSale(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	svc.now = fixedNow(2024, 3, 10)
	product := seedItem(t, conn, models.ItemProduct, "Bucha de bronze", "25.00", 5)
	service := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 3, 1),
		Items: []LineInput{
			{ItemID: product.ID, Quantity: 2},
			{ItemID: service.ID, Quantity: 1},
		},
	})

	done, err := svc.Complete(sale.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.SaleCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.CompletionDate == nil || !done.CompletionDate.Equal(date(2024, 3, 10)) {
		t.Errorf("completion date = %v, want 2024-03-10", done.CompletionDate)
	}
	var reloaded models.Item
	if err := conn.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQty != 3 {
		t.Errorf("stock = %d, want 3", reloaded.StockQty)
	}
	for _, inst := range done.Installments {
		if !inst.Paid {
			t.Errorf("installment %d unpaid after completion", inst.Number)
		}
		if inst.PaymentDate == nil || !inst.PaymentDate.Equal(date(2024, 3, 10)) {
			t.Errorf("installment %d payment date = %v", inst.Number, inst.PaymentDate)
		}
	}
}

func TestCompleteFloorsStockAtZero(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	product := seedItem(t, conn, models.ItemProduct, "Parafuso", "2.00", 1)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 3, 1),
		Items:     []LineInput{{ItemID: product.ID, Quantity: 4}},
	})
	if _, err := svc.Complete(sale.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	var reloaded models.Item
	if err := conn.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.StockQty != 0 {
		t.Errorf("stock = %d, want 0", reloaded.StockQty)
	}
}

func TestIllegalSaleTransitions(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)
	in := SaleInput{EntryDate: date(2024, 3, 1), Items: []LineInput{{ItemID: item.ID, Quantity: 1}}}

	completed := mustCreateSale(t, svc, in)
	if _, err := svc.Complete(completed.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.Complete(completed.ID); err != ErrAlreadyCompleted {
		t.Errorf("complete twice: err = %v, want ErrAlreadyCompleted", err)
	}
	if _, err := svc.Cancel(completed.ID); err != ErrCancelCompleted {
		t.Errorf("cancel completed: err = %v, want ErrCancelCompleted", err)
	}
	if _, err := svc.Update(completed.ID, in); err != ErrCompletedImmutable {
		t.Errorf("update completed: err = %v, want ErrCompletedImmutable", err)
	}
	if err := svc.Delete(completed.ID); err != ErrCompletedImmutable {
		t.Errorf("delete completed: err = %v, want ErrCompletedImmutable", err)
	}
	if _, err := svc.RegenerateInstallments(completed.ID); err != ErrCompletedImmutable {
		t.Errorf("regenerate completed: err = %v, want ErrCompletedImmutable", err)
	}

	cancelled := mustCreateSale(t, svc, in)
	if _, err := svc.Cancel(cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Complete(cancelled.ID); err != ErrSaleCancelled {
		t.Errorf("complete cancelled: err = %v, want ErrSaleCancelled", err)
	}
}

func TestPayAndUnpayInstallment(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	svc.now = fixedNow(2024, 4, 2)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 4, 1),
		Items:     []LineInput{{ItemID: item.ID, Quantity: 1}},
	})
	instID := sale.Installments[0].ID

	paid, err := svc.PayInstallment(instID)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if !paid.Paid || paid.PaymentDate == nil || !paid.PaymentDate.Equal(date(2024, 4, 2)) {
		t.Errorf("paid = %v, payment date = %v", paid.Paid, paid.PaymentDate)
	}

	// paying again leaves the original date
	svc.now = fixedNow(2024, 5, 9)
	again, err := svc.PayInstallment(instID)
	if err != nil {
		t.Fatalf("pay twice: %v", err)
	}
	if !again.PaymentDate.Equal(date(2024, 4, 2)) {
		t.Errorf("repay changed payment date to %v", again.PaymentDate)
	}

	unpaid, err := svc.UnpayInstallment(instID)
	if err != nil {
		t.Fatalf("unpay: %v", err)
	}
	if unpaid.Paid || unpaid.PaymentDate != nil {
		t.Errorf("unpay left paid=%v date=%v", unpaid.Paid, unpaid.PaymentDate)
	}
}

func TestSaleValidation(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)

	_, err := svc.Create(SaleInput{EntryDate: date(2024, 1, 1)})
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, found := ve.Fields["items"]; !found {
		t.Errorf("missing items violation: %v", ve.Fields)
	}

	_, err = svc.Create(SaleInput{
		EntryDate: date(2024, 1, 1),
		Items:     []LineInput{{ItemID: 999, Quantity: 1}},
	})
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("unknown item: err = %v, want ValidationError", err)
	}
}

func TestSaleTotalsWithDiscount(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 1, 1),
		Discount:  decimal.RequireFromString("10"),
		Items:     []LineInput{{ItemID: item.ID, Quantity: 3}},
	})
	if !sale.Subtotal().Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("subtotal = %s, want 300", sale.Subtotal())
	}
	if !sale.Total().Equal(decimal.RequireFromString("270.00")) {
		t.Errorf("total = %s, want 270", sale.Total())
	}
}

func TestLineDefaultsToCatalogPrice(t *testing.T) {
	conn := newTestDB(t)
	svc := NewSaleService(conn)
	item := seedItem(t, conn, models.ItemService, "Usinagem", "75.00", 0)

	sale := mustCreateSale(t, svc, SaleInput{
		EntryDate: date(2024, 1, 1),
		Items: []LineInput{
			{ItemID: item.ID, Quantity: 1},
			{ItemID: item.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("60.00")},
		},
	})
	if !sale.Items[0].UnitPrice.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("default price = %s, want 75", sale.Items[0].UnitPrice)
	}
	if !sale.Items[1].UnitPrice.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("override price = %s, want 60", sale.Items[1].UnitPrice)
	}
}
