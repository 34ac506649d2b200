package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a confirmed order, optionally derived from an approved quote.
// Numbers follow the VND series. A completed sale is immutable.
type Sale struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Number           string          `gorm:"size:20;not null;uniqueIndex" json:"number"`
	QuoteID          *uint           `gorm:"uniqueIndex" json:"quote_id,omitempty"`
	Quote            *Quote          `gorm:"foreignKey:QuoteID;constraint:OnDelete:SET NULL" json:"-"`
	ClientID         *uint           `json:"client_id,omitempty"`
	Client           *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`
	CompanyID        *uint           `json:"company_id,omitempty"`
	Company          *Company        `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
	Status           SaleStatus      `gorm:"size:15;not null;default:'in_progress';index" json:"status"`
	EntryDate        time.Time       `gorm:"type:date;not null" json:"entry_date"`
	CompletionDate   *time.Time      `gorm:"type:date" json:"completion_date,omitempty"`
	Discount         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	PaymentMethod    PaymentMethod   `gorm:"size:20" json:"payment_method"`
	PaymentKind      PaymentKind     `gorm:"size:15;not null;default:'single'" json:"payment_kind"`
	InstallmentCount int             `gorm:"not null;default:1" json:"installment_count"`
	Notes            string          `json:"notes"`
	Items            []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Installments     []Installment   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"installments"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SaleItem is one line of a sale, same restrict rule as QuoteItem.
type SaleItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	SaleID           uint            `gorm:"not null;index" json:"sale_id"`
	ItemID           uint            `gorm:"not null" json:"item_id"`
	Item             Item            `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	ExtraDescription string          `gorm:"size:255" json:"extra_description"`
}

func (si *SaleItem) Total() decimal.Decimal {
	return si.UnitPrice.Mul(decimal.NewFromInt(int64(si.Quantity)))
}

func (s *Sale) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range s.Items {
		sum = sum.Add(s.Items[i].Total())
	}
	return sum
}

func (s *Sale) DiscountValue() decimal.Decimal {
	return s.Subtotal().Mul(s.Discount).Div(decimal.NewFromInt(100)).Round(2)
}

func (s *Sale) Total() decimal.Decimal {
	return s.Subtotal().Sub(s.DiscountValue())
}

func (s *Sale) RecipientName() string {
	if s.Company != nil {
		return s.Company.Name
	}
	if s.Client != nil {
		return s.Client.Name
	}
	return ""
}

// AmountReceived sums the paid installments. Installments must be loaded.
func (s *Sale) AmountReceived() decimal.Decimal {
	sum := decimal.Zero
	for i := range s.Installments {
		if s.Installments[i].Paid {
			sum = sum.Add(s.Installments[i].Amount)
		}
	}
	return sum
}

// AmountPending is total minus received.
func (s *Sale) AmountPending() decimal.Decimal {
	return s.Total().Sub(s.AmountReceived())
}
