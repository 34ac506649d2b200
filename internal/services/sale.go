package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/models"
)

// SaleService owns the sale lifecycle: creation with number assignment,
// installment (re)generation, completion side effects and cancellation.
// Every mutating operation runs in a single transaction so multi-row effects
// are all-or-nothing.
type SaleService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db, now: time.Now}
}

// LineInput is one requested line item. A zero UnitPrice means "use the
// catalog item's current price".
type LineInput struct {
	ItemID           uint            `json:"item_id"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ExtraDescription string          `json:"extra_description"`
}

type SaleInput struct {
	ClientID         *uint                `json:"client_id"`
	CompanyID        *uint                `json:"company_id"`
	EntryDate        time.Time            `json:"entry_date"`
	Discount         decimal.Decimal      `json:"discount"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	PaymentKind      models.PaymentKind   `json:"payment_kind"`
	InstallmentCount int                  `json:"installment_count"`
	Notes            string               `json:"notes"`
	Items            []LineInput          `json:"items"`
}

// ValidationError carries field-level problems for the submitting user.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func validateSaleInput(in *SaleInput) error {
	fields := map[string]string{}
	if in.PaymentKind == "" {
		in.PaymentKind = models.PaymentSingle
	}
	if !in.PaymentKind.Valid() {
		fields["payment_kind"] = "unknown payment kind"
	}
	if !in.PaymentMethod.Valid() {
		fields["payment_method"] = "unknown payment method"
	}
	if in.InstallmentCount < 1 {
		in.InstallmentCount = 1
	}
	if in.Discount.IsNegative() {
		fields["discount"] = "must not be negative"
	}
	if len(in.Items) == 0 {
		fields["items"] = "at least one line item is required"
	}
	for _, li := range in.Items {
		if li.ItemID == 0 || li.Quantity <= 0 {
			fields["items"] = "invalid item or quantity"
		}
		if li.UnitPrice.IsNegative() {
			fields["items"] = "unit price must not be negative"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create persists a new sale: number assignment, line items and the initial
// installment rows happen in one transaction. The number series conflict is
// retried a bounded number of times.
func (s *SaleService) Create(in SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(&in); err != nil {
		return nil, err
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = dateOnly(s.now())
	}

	var sale *models.Sale
	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		sale, err = s.createOnce(in)
		if err == nil || !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return s.Get(sale.ID)
}

func (s *SaleService) createOnce(in SaleInput) (*models.Sale, error) {
	sale := &models.Sale{
		ClientID:         in.ClientID,
		CompanyID:        in.CompanyID,
		Status:           models.SaleInProgress,
		EntryDate:        dateOnly(in.EntryDate),
		Discount:         in.Discount,
		PaymentMethod:    in.PaymentMethod,
		PaymentKind:      in.PaymentKind,
		InstallmentCount: in.InstallmentCount,
		Notes:            in.Notes,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, &models.Sale{}, SaleNumberPrefix)
		if err != nil {
			return err
		}
		sale.Number = number
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		lines, err := buildSaleLines(tx, sale.ID, in.Items)
		if err != nil {
			return err
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		sale.Items = lines
		return regenerateInstallments(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Update replaces the sale's fields and line items and regenerates the
// installment plan. Completed sales are immutable.
func (s *SaleService) Update(id uint, in SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(&in); err != nil {
		return nil, err
	}
	sale, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sale.Status == models.SaleCompleted {
		return nil, ErrCompletedImmutable
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = sale.EntryDate
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"client_id":         in.ClientID,
			"company_id":        in.CompanyID,
			"entry_date":        dateOnly(in.EntryDate),
			"discount":          in.Discount,
			"payment_method":    in.PaymentMethod,
			"payment_kind":      in.PaymentKind,
			"installment_count": in.InstallmentCount,
			"notes":             in.Notes,
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		lines, err := buildSaleLines(tx, id, in.Items)
		if err != nil {
			return err
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		sale.Items = lines
		sale.EntryDate = dateOnly(in.EntryDate)
		sale.Discount = in.Discount
		sale.PaymentKind = in.PaymentKind
		sale.InstallmentCount = in.InstallmentCount
		return regenerateInstallments(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes an in-progress or cancelled sale; line items and
// installments go with it. Completed sales are immutable.
func (s *SaleService) Delete(id uint) error {
	sale, err := s.Get(id)
	if err != nil {
		return err
	}
	if sale.Status == models.SaleCompleted {
		return ErrCompletedImmutable
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, id).Error
	})
}

// Get loads a sale with line items, installments and registry links.
func (s *SaleService) Get(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.
		Preload("Items.Item").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Preload("Client").
		Preload("Company").
		First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Complete transitions a sale to completed. In one transaction: status and
// completion date are set, product stock is decremented (floored at zero)
// per line, and every unpaid installment is marked paid today.
func (s *SaleService) Complete(id uint) (*models.Sale, error) {
	sale, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	switch sale.Status {
	case models.SaleCompleted:
		return nil, ErrAlreadyCompleted
	case models.SaleCancelled:
		return nil, ErrSaleCancelled
	case models.SaleInProgress:
		// proceed
	default:
		return nil, fmt.Errorf("unknown sale status %q", sale.Status)
	}

	today := dateOnly(s.now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":          models.SaleCompleted,
			"completion_date": today,
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		for i := range sale.Items {
			line := &sale.Items[i]
			switch line.Item.Kind {
			case models.ItemProduct:
				newStock := line.Item.StockQty - line.Quantity
				if newStock < 0 {
					newStock = 0
				}
				if err := tx.Model(&models.Item{}).Where("id = ?", line.ItemID).
					Update("stock_qty", newStock).Error; err != nil {
					return err
				}
			case models.ItemService:
				// services carry no stock
			}
		}
		return tx.Model(&models.Installment{}).
			Where("sale_id = ? AND paid = ?", id, false).
			Updates(map[string]interface{}{"paid": true, "payment_date": today}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel marks an in-progress sale cancelled. Completed sales cannot be
// cancelled.
func (s *SaleService) Cancel(id uint) (*models.Sale, error) {
	sale, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sale.Status == models.SaleCompleted {
		return nil, ErrCancelCompleted
	}
	if err := s.db.Model(&models.Sale{}).Where("id = ?", id).
		Update("status", models.SaleCancelled).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// RegenerateInstallments rebuilds the installment plan from the sale's
// current total, kind and count. All prior rows are discarded, paid ones
// included. Refused for completed sales, which are immutable.
func (s *SaleService) RegenerateInstallments(id uint) (*models.Sale, error) {
	sale, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sale.Status == models.SaleCompleted {
		return nil, ErrCompletedImmutable
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return regenerateInstallments(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// regenerateInstallments deletes the sale's installments and inserts the new
// plan. Single payment: one row, due on the entry date, amount = total.
// Plan with count > 1: count rows of total/count (rounded to cents, last row
// NOT adjusted for the remainder), due on entry date + (i-1) months.
func regenerateInstallments(tx *gorm.DB, sale *models.Sale) error {
	if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.Installment{}).Error; err != nil {
		return err
	}
	total := sale.Total()

	count := 1
	switch sale.PaymentKind {
	case models.PaymentInstallments:
		if sale.InstallmentCount > 1 {
			count = sale.InstallmentCount
		}
	case models.PaymentSingle:
		count = 1
	default:
		return fmt.Errorf("unknown payment kind %q", sale.PaymentKind)
	}

	amount := total
	if count > 1 {
		amount = total.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	rows := make([]models.Installment, 0, count)
	for i := 1; i <= count; i++ {
		rows = append(rows, models.Installment{
			SaleID:  sale.ID,
			Number:  i,
			Amount:  amount,
			DueDate: addMonths(sale.EntryDate, i-1),
		})
	}
	return tx.Create(&rows).Error
}

// PayInstallment marks one installment paid today. Already-paid rows are
// left untouched.
func (s *SaleService) PayInstallment(id uint) (*models.Installment, error) {
	var inst models.Installment
	if err := s.db.First(&inst, id).Error; err != nil {
		return nil, err
	}
	if !inst.Paid {
		today := dateOnly(s.now())
		updates := map[string]interface{}{"paid": true, "payment_date": today}
		if err := s.db.Model(&inst).Updates(updates).Error; err != nil {
			return nil, err
		}
		inst.Paid = true
		inst.PaymentDate = &today
	}
	return &inst, nil
}

// UnpayInstallment clears the paid flag and the payment date together,
// keeping the paid ⇒ date-set invariant.
func (s *SaleService) UnpayInstallment(id uint) (*models.Installment, error) {
	var inst models.Installment
	if err := s.db.First(&inst, id).Error; err != nil {
		return nil, err
	}
	if inst.Paid {
		updates := map[string]interface{}{"paid": false, "payment_date": nil}
		if err := s.db.Model(&inst).Updates(updates).Error; err != nil {
			return nil, err
		}
		inst.Paid = false
		inst.PaymentDate = nil
	}
	return &inst, nil
}

// buildSaleLines resolves the requested items and fills default unit prices
// from the catalog.
func buildSaleLines(tx *gorm.DB, saleID uint, inputs []LineInput) ([]models.SaleItem, error) {
	items, err := loadItems(tx, inputs)
	if err != nil {
		return nil, err
	}
	lines := make([]models.SaleItem, 0, len(inputs))
	for _, in := range inputs {
		item := items[in.ItemID]
		price := in.UnitPrice
		if price.IsZero() {
			price = item.Price
		}
		lines = append(lines, models.SaleItem{
			SaleID:           saleID,
			ItemID:           in.ItemID,
			Quantity:         in.Quantity,
			UnitPrice:        price,
			ExtraDescription: in.ExtraDescription,
		})
	}
	return lines, nil
}

// loadItems fetches every referenced catalog item, erroring when one is
// unknown.
func loadItems(tx *gorm.DB, inputs []LineInput) (map[uint]models.Item, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ItemID)
	}
	var items []models.Item
	if err := tx.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &ValidationError{Fields: map[string]string{"items": fmt.Sprintf("unknown item %d", id)}}
		}
	}
	return byID, nil
}

// IsNotFound reports whether err is the ORM's record-not-found.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
