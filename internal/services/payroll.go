package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/models"
)

// Salary expenses are filed under this category, created on demand.
const salaryCategoryName = "Salários"

// PayrollService generates and processes monthly payroll runs. A run is
// unique per (month, year); generation is idempotent once processed.
type PayrollService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPayrollService(db *gorm.DB) *PayrollService {
	return &PayrollService{db: db, now: time.Now}
}

// Generate gets or creates the (month, year) run. When the run is already
// processed it returns ErrPayrollProcessed and changes nothing. Otherwise it
// files one salary expense dated the 1st for every active employee that does
// not yet have one for the period, and records the sum of all active
// salaries as the run total. The total always reflects the current roster,
// even when some expense rows were created by an earlier partial run.
// Returns the run and how many employees were covered.
func (s *PayrollService) Generate(month, year int) (*models.PayrollRun, int, error) {
	if month < 1 || month > 12 {
		return nil, 0, &ValidationError{Fields: map[string]string{"month": "must be 1..12"}}
	}
	if year < 1 {
		return nil, 0, &ValidationError{Fields: map[string]string{"year": "must be positive"}}
	}

	var run models.PayrollRun
	var covered int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("month = ? AND year = ?", month, year).First(&run).Error
		if IsNotFound(err) {
			run = models.PayrollRun{Month: month, Year: year, GeneratedAt: s.now(), Total: decimal.Zero}
			if err := tx.Create(&run).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if run.Processed {
			return ErrPayrollProcessed
		}

		category, err := salaryCategory(tx)
		if err != nil {
			return err
		}

		var active []models.Employee
		if err := tx.Where("status = ?", models.EmployeeActive).Find(&active).Error; err != nil {
			return err
		}

		periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		periodEnd := periodStart.AddDate(0, 1, 0)
		total := decimal.Zero
		for _, emp := range active {
			var count int64
			err := tx.Model(&models.Expense{}).
				Where("employee_id = ? AND kind = ? AND date >= ? AND date < ?",
					emp.ID, models.ExpenseSalary, periodStart, periodEnd).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				expense := models.Expense{
					Description: fmt.Sprintf("Salary %s - %02d/%d", emp.Name, month, year),
					CategoryID:  &category.ID,
					Amount:      emp.Salary,
					Date:        periodStart,
					Kind:        models.ExpenseSalary,
					EmployeeID:  &emp.ID,
				}
				if err := tx.Create(&expense).Error; err != nil {
					return err
				}
			}
			total = total.Add(emp.Salary)
		}
		covered = len(active)

		run.Total = total
		return tx.Model(&models.PayrollRun{}).Where("id = ?", run.ID).
			Update("total", total).Error
	})
	if err != nil {
		if err == ErrPayrollProcessed {
			return &run, 0, err
		}
		return nil, 0, err
	}
	return &run, covered, nil
}

// Process permanently marks the run as processed. There is no unprocess.
func (s *PayrollService) Process(id uint) (*models.PayrollRun, error) {
	var run models.PayrollRun
	if err := s.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	if run.Processed {
		return &run, ErrPayrollProcessed
	}
	if err := s.db.Model(&run).Update("processed", true).Error; err != nil {
		return nil, err
	}
	run.Processed = true
	return &run, nil
}

func salaryCategory(tx *gorm.DB) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	err := tx.Where("name = ?", salaryCategoryName).First(&category).Error
	if IsNotFound(err) {
		category = models.ExpenseCategory{
			Name:        salaryCategoryName,
			Color:       "#4CAF50",
			Description: "Pagamento de salários dos funcionários",
		}
		if err := tx.Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
