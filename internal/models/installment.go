package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled payment obligation of a sale. The pair
// (sale, number) is unique. Paid implies a payment date; clearing the paid
// flag clears the date.
type Installment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SaleID      uint            `gorm:"not null;uniqueIndex:idx_sale_installment,priority:1" json:"sale_id"`
	Number      int             `gorm:"not null;uniqueIndex:idx_sale_installment,priority:2" json:"number"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"type:date;not null" json:"due_date"`
	Paid        bool            `gorm:"not null;default:false;index" json:"paid"`
	PaymentDate *time.Time      `gorm:"type:date" json:"payment_date,omitempty"`
	Notes       string          `gorm:"size:255" json:"notes"`
}

// Overdue reports whether the installment is unpaid past its due date.
func (p *Installment) Overdue(today time.Time) bool {
	if p.Paid {
		return false
	}
	return p.DueDate.Before(today)
}
