package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a commercial proposal. The number is assigned once on first
// persistence (ORC00001, ORC00002, ...) and never changes afterwards.
type Quote struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Number       string          `gorm:"size:20;not null;uniqueIndex" json:"number"`
	ClientID     *uint           `json:"client_id,omitempty"`
	Client       *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`
	CompanyID    *uint           `json:"company_id,omitempty"`
	Company      *Company        `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
	Status       QuoteStatus     `gorm:"size:15;not null;default:'pending';index" json:"status"`
	IssueDate    time.Time       `gorm:"type:date;not null" json:"issue_date"`
	ValidUntil   time.Time       `gorm:"type:date;not null" json:"valid_until"`
	Discount     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	Notes        string          `json:"notes"`
	PaymentTerms string          `json:"payment_terms"`
	Items        []QuoteItem     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// QuoteItem is one line of a quote. Deleting the referenced catalog item is
// restricted while the line exists.
type QuoteItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	QuoteID          uint            `gorm:"not null;index" json:"quote_id"`
	ItemID           uint            `gorm:"not null" json:"item_id"`
	Item             Item            `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	ExtraDescription string          `gorm:"size:255" json:"extra_description"`
}

// Total is quantity × unit price.
func (qi *QuoteItem) Total() decimal.Decimal {
	return qi.UnitPrice.Mul(decimal.NewFromInt(int64(qi.Quantity)))
}

// Subtotal sums the line totals. Items must be loaded.
func (q *Quote) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range q.Items {
		sum = sum.Add(q.Items[i].Total())
	}
	return sum
}

// DiscountValue is subtotal × discount/100.
func (q *Quote) DiscountValue() decimal.Decimal {
	return q.Subtotal().Mul(q.Discount).Div(decimal.NewFromInt(100)).Round(2)
}

// Total is subtotal minus the discount value.
func (q *Quote) Total() decimal.Decimal {
	return q.Subtotal().Sub(q.DiscountValue())
}

// RecipientName prefers the company over the client, matching document output.
func (q *Quote) RecipientName() string {
	if q.Company != nil {
		return q.Company.Name
	}
	if q.Client != nil {
		return q.Client.Name
	}
	return ""
}
