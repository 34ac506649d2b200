package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the unified catalog entry for services and stocked products.
// Stock fields are only meaningful for the product kind.
type Item struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Kind        ItemKind        `gorm:"size:10;not null;index" json:"kind"`
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `json:"description"`
	StockQty    int             `gorm:"not null;default:0" json:"stock_qty"`
	MinStock    int             `gorm:"not null;default:0" json:"min_stock"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LowStock reports whether the item needs restocking. Services never do.
func (i *Item) LowStock() bool {
	switch i.Kind {
	case ItemProduct:
		return i.StockQty <= i.MinStock
	case ItemService:
		return false
	}
	return false
}
