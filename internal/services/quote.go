package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/models"
)

// QuoteService owns the quote lifecycle: numbered creation, approve/reject
// transitions and conversion into a sale.
type QuoteService struct {
	db    *gorm.DB
	sales *SaleService
	now   func() time.Time
}

func NewQuoteService(db *gorm.DB, sales *SaleService) *QuoteService {
	return &QuoteService{db: db, sales: sales, now: time.Now}
}

type QuoteInput struct {
	ClientID     *uint           `json:"client_id"`
	CompanyID    *uint           `json:"company_id"`
	ValidUntil   time.Time       `json:"valid_until"`
	Discount     decimal.Decimal `json:"discount"`
	Notes        string          `json:"notes"`
	PaymentTerms string          `json:"payment_terms"`
	Items        []LineInput     `json:"items"`
}

func validateQuoteInput(in *QuoteInput) error {
	fields := map[string]string{}
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

// Create persists a new pending quote. Issue date is today; validity
// defaults to thirty days out.
func (s *QuoteService) Create(in QuoteInput) (*models.Quote, error) {
	if err := validateQuoteInput(&in); err != nil {
		return nil, err
	}
	today := dateOnly(s.now())
	if in.ValidUntil.IsZero() {
		in.ValidUntil = today.AddDate(0, 0, 30)
	}

	var quote *models.Quote
	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		quote, err = s.createOnce(in, today)
		if err == nil || !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return s.Get(quote.ID)
}

func (s *QuoteService) createOnce(in QuoteInput, today time.Time) (*models.Quote, error) {
	quote := &models.Quote{
		ClientID:     in.ClientID,
		CompanyID:    in.CompanyID,
		Status:       models.QuotePending,
		IssueDate:    today,
		ValidUntil:   dateOnly(in.ValidUntil),
		Discount:     in.Discount,
		Notes:        in.Notes,
		PaymentTerms: in.PaymentTerms,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, &models.Quote{}, QuoteNumberPrefix)
		if err != nil {
			return err
		}
		quote.Number = number
		if err := tx.Create(quote).Error; err != nil {
			return err
		}
		lines, err := buildQuoteLines(tx, quote.ID, in.Items)
		if err != nil {
			return err
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Update replaces fields and line items. Converted quotes are terminal.
func (s *QuoteService) Update(id uint, in QuoteInput) (*models.Quote, error) {
	if err := validateQuoteInput(&in); err != nil {
		return nil, err
	}
	quote, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if quote.Status == models.QuoteConverted {
		return nil, ErrQuoteNotPending
	}
	if in.ValidUntil.IsZero() {
		in.ValidUntil = quote.ValidUntil
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"client_id":     in.ClientID,
			"company_id":    in.CompanyID,
			"valid_until":   dateOnly(in.ValidUntil),
			"discount":      in.Discount,
			"notes":         in.Notes,
			"payment_terms": in.PaymentTerms,
		}
		if err := tx.Model(&models.Quote{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		lines, err := buildQuoteLines(tx, id, in.Items)
		if err != nil {
			return err
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *QuoteService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quote{}, id).Error
	})
}

func (s *QuoteService) Get(id uint) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.
		Preload("Items.Item").
		Preload("Client").
		Preload("Company").
		First(&quote, id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Approve moves a pending quote to approved.
func (s *QuoteService) Approve(id uint) (*models.Quote, error) {
	return s.transition(id, models.QuoteApproved)
}

// Reject moves a pending quote to rejected.
func (s *QuoteService) Reject(id uint) (*models.Quote, error) {
	return s.transition(id, models.QuoteRejected)
}

func (s *QuoteService) transition(id uint, to models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if quote.Status != models.QuotePending {
		return nil, ErrQuoteNotPending
	}
	if err := s.db.Model(&models.Quote{}).Where("id = ?", id).
		Update("status", to).Error; err != nil {
		return nil, err
	}
	quote.Status = to
	return quote, nil
}

// Convert turns an approved quote into a new in-progress sale. Client,
// company, discount and line items are copied verbatim, the entry date is
// today, the sale carries a back-reference and the quote becomes converted
// (terminal). Everything happens in one transaction.
func (s *QuoteService) Convert(id uint) (*models.Sale, error) {
	quote, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if quote.Status != models.QuoteApproved {
		return nil, ErrQuoteNotApproved
	}

	today := dateOnly(s.now())
	notes := fmt.Sprintf("Converted from quote %s", quote.Number)
	if quote.Notes != "" {
		notes += "\n" + quote.Notes
	}

	var sale *models.Sale
	for attempt := 0; attempt < numberRetries; attempt++ {
		sale, err = s.convertOnce(quote, today, notes)
		if err == nil || !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return s.sales.Get(sale.ID)
}

func (s *QuoteService) convertOnce(quote *models.Quote, today time.Time, notes string) (*models.Sale, error) {
	sale := &models.Sale{
		QuoteID:          &quote.ID,
		ClientID:         quote.ClientID,
		CompanyID:        quote.CompanyID,
		Status:           models.SaleInProgress,
		EntryDate:        today,
		Discount:         quote.Discount,
		PaymentKind:      models.PaymentSingle,
		InstallmentCount: 1,
		Notes:            notes,
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
		lines := make([]models.SaleItem, 0, len(quote.Items))
		for _, qi := range quote.Items {
			lines = append(lines, models.SaleItem{
				SaleID:           sale.ID,
				ItemID:           qi.ItemID,
				Quantity:         qi.Quantity,
				UnitPrice:        qi.UnitPrice,
				ExtraDescription: qi.ExtraDescription,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		sale.Items = lines
		if err := regenerateInstallments(tx, sale); err != nil {
			return err
		}
		return tx.Model(&models.Quote{}).Where("id = ?", quote.ID).
			Update("status", models.QuoteConverted).Error
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func buildQuoteLines(tx *gorm.DB, quoteID uint, inputs []LineInput) ([]models.QuoteItem, error) {
	items, err := loadItems(tx, inputs)
	if err != nil {
		return nil, err
	}
	lines := make([]models.QuoteItem, 0, len(inputs))
	for _, in := range inputs {
		item := items[in.ItemID]
		price := in.UnitPrice
		if price.IsZero() {
			price = item.Price
		}
		lines = append(lines, models.QuoteItem{
			QuoteID:          quoteID,
			ItemID:           in.ItemID,
			Quantity:         in.Quantity,
			UnitPrice:        price,
			ExtraDescription: in.ExtraDescription,
		})
	}
	return lines, nil
}
