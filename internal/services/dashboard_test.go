package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/models"
)

func seedExpense(t *testing.T, conn *gorm.DB, description, amount string, day time.Time) {
	t.Helper()
	e := models.Expense{
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        day,
		Kind:        models.ExpenseVariable,
	}
	if err := conn.Create(&e).Error; err != nil {
		t.Fatalf("seed expense: %v", err)
	}
}

func TestDashboardSummary(t *testing.T) {
	conn := newTestDB(t)
	sales := NewSaleService(conn)
	sales.now = fixedNow(2024, 3, 20)
	dash := NewDashboardService(conn)
	dash.now = fixedNow(2024, 3, 20)

	item := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)
	line := []LineInput{{ItemID: item.ID, Quantity: 1}}

	// in range, counts toward revenue
	inRange := mustCreateSale(t, sales, SaleInput{EntryDate: date(2024, 3, 5), Items: line})
	// in range but cancelled: excluded from revenue
	cancelled := mustCreateSale(t, sales, SaleInput{EntryDate: date(2024, 3, 6), Items: line})
	if _, err := sales.Cancel(cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// out of range for revenue; its unpaid installment is due in February,
	// so it shows up as pending and overdue
	mustCreateSale(t, sales, SaleInput{EntryDate: date(2024, 2, 1), Items: line})

	// pay the in-range sale's installment inside the range
	if _, err := sales.PayInstallment(inRange.Installments[0].ID); err != nil {
		t.Fatalf("pay: %v", err)
	}

	seedExpense(t, conn, "Energia", "40.00", date(2024, 3, 2))
	seedExpense(t, conn, "Aluguel antigo", "99.00", date(2024, 1, 2))
	seedEmployee(t, conn, "Ana", "2000.00", models.EmployeeActive)
	seedEmployee(t, conn, "Beto", "1500.00", models.EmployeeInactive)

	sum, err := dash.Summarize(date(2024, 3, 1), date(2024, 3, 31))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if !sum.Revenue.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("revenue = %s, want 100 (cancelled and out-of-range excluded)", sum.Revenue)
	}
	// 40 expense in range + 2000 active salary
	if !sum.Expenses.Equal(decimal.RequireFromString("2040.00")) {
		t.Errorf("expenses = %s, want 2040", sum.Expenses)
	}
	if !sum.Net.Equal(decimal.RequireFromString("-1940.00")) {
		t.Errorf("net = %s, want -1940", sum.Net)
	}
	if !sum.Received.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("received = %s, want 100", sum.Received)
	}
	// pending: the February sale's unpaid installment; the cancelled sale's
	// rows don't count because the sale is not in progress
	if !sum.Pending.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("pending = %s, want 100", sum.Pending)
	}
	if !sum.Overdue.Equal(decimal.RequireFromString("100.00")) || sum.OverdueCount != 1 {
		t.Errorf("overdue = %s (%d), want 100 (1)", sum.Overdue, sum.OverdueCount)
	}

	if sum.InProgressCount != 2 {
		t.Errorf("in progress = %d, want 2", sum.InProgressCount)
	}
}

func TestDashboardDefaultRange(t *testing.T) {
	conn := newTestDB(t)
	dash := NewDashboardService(conn)
	dash.now = fixedNow(2024, 7, 19)
	from, to := dash.DefaultRange()
	if !from.Equal(date(2024, 7, 1)) || !to.Equal(date(2024, 7, 19)) {
		t.Errorf("range = %s..%s, want 2024-07-01..2024-07-19", from, to)
	}
}

func TestDashboardCharts(t *testing.T) {
	conn := newTestDB(t)
	sales := NewSaleService(conn)
	sales.now = fixedNow(2024, 6, 10)
	dash := NewDashboardService(conn)
	dash.now = fixedNow(2024, 6, 15)

	itemA := seedItem(t, conn, models.ItemService, "Usinagem", "100.00", 0)
	itemB := seedItem(t, conn, models.ItemService, "Solda", "40.00", 0)

	sale := mustCreateSale(t, sales, SaleInput{
		EntryDate: date(2024, 6, 1),
		Items: []LineInput{
			{ItemID: itemA.ID, Quantity: 2},
			{ItemID: itemB.ID, Quantity: 1},
		},
	})
	if _, err := sales.Complete(sale.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	seedExpense(t, conn, "Energia", "60.00", date(2024, 6, 5))

	charts, err := dash.Charts()
	if err != nil {
		t.Fatalf("charts: %v", err)
	}
	if len(charts.Labels) != 12 || len(charts.Revenue) != 12 || len(charts.Expenses) != 12 {
		t.Fatalf("series lengths = %d/%d/%d, want 12", len(charts.Labels), len(charts.Revenue), len(charts.Expenses))
	}
	last := len(charts.Labels) - 1
	if charts.Labels[last] != "Jun/2024" {
		t.Errorf("last label = %q, want Jun/2024", charts.Labels[last])
	}
	if !charts.Revenue[last].Equal(decimal.RequireFromString("240.00")) {
		t.Errorf("june revenue = %s, want 240", charts.Revenue[last])
	}
	if !charts.Expenses[last].Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("june expenses = %s, want 60", charts.Expenses[last])
	}
	if len(charts.TopItems) != 2 || charts.TopItems[0].Name != "Usinagem" {
		t.Errorf("top items = %+v, want Usinagem first", charts.TopItems)
	}
}
