package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/models"
)

// DashboardService is the read side: period-bounded sums over sales,
// expenses and installments. Nothing is cached; every call recomputes from
// the store. Money sums are done in Go with decimal arithmetic over the
// loaded rows.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// Summary is the headline block of the dashboard.
type Summary struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	Revenue         decimal.Decimal `json:"revenue"`
	Expenses        decimal.Decimal `json:"expenses"`
	Net             decimal.Decimal `json:"net"`
	Received        decimal.Decimal `json:"received"`
	Pending         decimal.Decimal `json:"pending"`
	Overdue         decimal.Decimal `json:"overdue"`
	OverdueCount    int             `json:"overdue_count"`
	InProgressCount int64           `json:"in_progress_count"`
	CompletedCount  int64           `json:"completed_count"`
}

// Summarize computes the dashboard numbers for [from, to] (dates, inclusive):
//
//	revenue   Σ total of non-cancelled sales entered in range
//	expenses  Σ expense amounts in range + Σ active-employee salaries
//	received  Σ paid installments with payment date in range
//	pending   Σ unpaid installments of in-progress sales (not range bound)
//	overdue   pending subset with due date before today
//
// Salary cost is always the current roster, even for past ranges.
func (s *DashboardService) Summarize(from, to time.Time) (*Summary, error) {
	from, to = dateOnly(from), dateOnly(to)
	today := dateOnly(s.now())
	sum := &Summary{From: from, To: to,
		Revenue: decimal.Zero, Expenses: decimal.Zero, Net: decimal.Zero,
		Received: decimal.Zero, Pending: decimal.Zero, Overdue: decimal.Zero}

	var sales []models.Sale
	err := s.db.Preload("Items").
		Where("status <> ? AND entry_date >= ? AND entry_date <= ?", models.SaleCancelled, from, to).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sum.Revenue = sum.Revenue.Add(sales[i].Total())
	}

	var expenses []models.Expense
	if err := s.db.Where("date >= ? AND date <= ?", from, to).Find(&expenses).Error; err != nil {
		return nil, err
	}
	for i := range expenses {
		sum.Expenses = sum.Expenses.Add(expenses[i].Amount)
	}
	var active []models.Employee
	if err := s.db.Where("status = ?", models.EmployeeActive).Find(&active).Error; err != nil {
		return nil, err
	}
	for i := range active {
		sum.Expenses = sum.Expenses.Add(active[i].Salary)
	}
	sum.Net = sum.Revenue.Sub(sum.Expenses)

	var paid []models.Installment
	err = s.db.Where("paid = ? AND payment_date >= ? AND payment_date <= ?", true, from, to).
		Find(&paid).Error
	if err != nil {
		return nil, err
	}
	for i := range paid {
		sum.Received = sum.Received.Add(paid[i].Amount)
	}

	var open []models.Installment
	err = s.db.Joins("JOIN sales ON sales.id = installments.sale_id").
		Where("installments.paid = ? AND sales.status = ?", false, models.SaleInProgress).
		Find(&open).Error
	if err != nil {
		return nil, err
	}
	for i := range open {
		sum.Pending = sum.Pending.Add(open[i].Amount)
		if open[i].Overdue(today) {
			sum.Overdue = sum.Overdue.Add(open[i].Amount)
			sum.OverdueCount++
		}
	}

	if err := s.db.Model(&models.Sale{}).Where("status = ?", models.SaleInProgress).
		Count(&sum.InProgressCount).Error; err != nil {
		return nil, err
	}
	err = s.db.Model(&models.Sale{}).
		Where("status = ? AND completion_date >= ? AND completion_date <= ?", models.SaleCompleted, from, to).
		Count(&sum.CompletedCount).Error
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// DefaultRange is the first of the current month through today.
func (s *DashboardService) DefaultRange() (time.Time, time.Time) {
	today := dateOnly(s.now())
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today
}

// ChartData feeds the dashboard charts: a 12-month revenue/expense series,
// the top items by revenue over completed sales and the top expense
// categories by total.
type ChartData struct {
	Labels        []string          `json:"labels"`
	Revenue       []decimal.Decimal `json:"revenue"`
	Expenses      []decimal.Decimal `json:"expenses"`
	TopItems      []NamedTotal      `json:"top_items"`
	TopCategories []NamedTotal      `json:"top_categories"`
}

type NamedTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

const chartMonths = 12

// Charts builds the monthly series for the trailing twelve months (bucketed
// by completion date for revenue, expense date for costs) plus both top-5
// rankings.
func (s *DashboardService) Charts() (*ChartData, error) {
	today := dateOnly(s.now())
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	start := firstOfMonth.AddDate(0, -(chartMonths - 1), 0)

	data := &ChartData{
		Labels:   make([]string, chartMonths),
		Revenue:  make([]decimal.Decimal, chartMonths),
		Expenses: make([]decimal.Decimal, chartMonths),
	}
	for i := 0; i < chartMonths; i++ {
		month := start.AddDate(0, i, 0)
		data.Labels[i] = month.Format("Jan/2006")
		data.Revenue[i] = decimal.Zero
		data.Expenses[i] = decimal.Zero
	}
	bucket := func(t time.Time) int {
		return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
	}

	var completed []models.Sale
	err := s.db.Preload("Items").
		Where("status = ? AND completion_date >= ?", models.SaleCompleted, start).
		Find(&completed).Error
	if err != nil {
		return nil, err
	}
	for i := range completed {
		if completed[i].CompletionDate == nil {
			continue
		}
		if b := bucket(*completed[i].CompletionDate); b >= 0 && b < chartMonths {
			data.Revenue[b] = data.Revenue[b].Add(completed[i].Total())
		}
	}

	var expenses []models.Expense
	if err := s.db.Where("date >= ?", start).Find(&expenses).Error; err != nil {
		return nil, err
	}
	for i := range expenses {
		if b := bucket(expenses[i].Date); b >= 0 && b < chartMonths {
			data.Expenses[b] = data.Expenses[b].Add(expenses[i].Amount)
		}
	}

	topItems, err := s.topItemsByRevenue(5)
	if err != nil {
		return nil, err
	}
	data.TopItems = topItems

	topCategories, err := s.topExpenseCategories(5)
	if err != nil {
		return nil, err
	}
	data.TopCategories = topCategories
	return data, nil
}

// topItemsByRevenue ranks catalog items by line revenue across completed
// sales.
func (s *DashboardService) topItemsByRevenue(n int) ([]NamedTotal, error) {
	var lines []models.SaleItem
	err := s.db.Preload("Item").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ?", models.SaleCompleted).
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	totals := map[string]decimal.Decimal{}
	for i := range lines {
		name := lines[i].Item.Name
		totals[name] = totals[name].Add(lines[i].Total())
	}
	return rankTotals(totals, n), nil
}

// topExpenseCategories ranks categories by summed expense amount;
// uncategorized expenses are grouped under an empty name shown as
// "Uncategorized".
func (s *DashboardService) topExpenseCategories(n int) ([]NamedTotal, error) {
	var expenses []models.Expense
	if err := s.db.Preload("Category").Find(&expenses).Error; err != nil {
		return nil, err
	}
	totals := map[string]decimal.Decimal{}
	for i := range expenses {
		name := "Uncategorized"
		if expenses[i].Category != nil {
			name = expenses[i].Category.Name
		}
		totals[name] = totals[name].Add(expenses[i].Amount)
	}
	return rankTotals(totals, n), nil
}

func rankTotals(totals map[string]decimal.Decimal, n int) []NamedTotal {
	ranked := make([]NamedTotal, 0, len(totals))
	for name, total := range totals {
		ranked = append(ranked, NamedTotal{Name: name, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Total.GreaterThan(ranked[j].Total)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
