package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/pdf"
	"tornearia/internal/profile"
	"tornearia/internal/services"
)

type QuoteHandler struct {
	DB      *gorm.DB
	Quotes  *services.QuoteService
	Profile *profile.Store
	now     func() time.Time
}

func NewQuoteHandler(db *gorm.DB, quotes *services.QuoteService, store *profile.Store) *QuoteHandler {
	return &QuoteHandler{DB: db, Quotes: quotes, Profile: store, now: time.Now}
}

type quoteInput struct {
	ClientID     *uint                `json:"client_id"`
	CompanyID    *uint                `json:"company_id"`
	ValidUntil   string               `json:"valid_until"`
	Discount     decimal.Decimal      `json:"discount"`
	Notes        string               `json:"notes"`
	PaymentTerms string               `json:"payment_terms"`
	Items        []services.LineInput `json:"items"`
}

func (in *quoteInput) toService() (services.QuoteInput, bool) {
	validUntil, ok := parseDate(in.ValidUntil)
	if !ok {
		return services.QuoteInput{}, false
	}
	return services.QuoteInput{
		ClientID:     in.ClientID,
		CompanyID:    in.CompanyID,
		ValidUntil:   validUntil,
		Discount:     in.Discount,
		Notes:        in.Notes,
		PaymentTerms: in.PaymentTerms,
		Items:        in.Items,
	}, true
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Quote{})
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("lower(number) LIKE ?", likePattern(q))
	}
	if v := r.URL.Query().Get("status"); v != "" {
		dbq = dbq.Where("status = ?", v)
	}
	var total int64
	dbq.Count(&total)
	var quotes []models.Quote
	err := dbq.
		Preload("Items.Item").
		Preload("Client").
		Preload("Company").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&quotes).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotes, "total": total, "limit": limit, "offset": offset})
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	quote, err := h.Quotes.Get(id)
	if err != nil {
		writeServiceError(w, err, "quote_load_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in quoteInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	svcIn, ok := in.toService()
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"valid_until": "invalid_date"})
		return
	}
	quote, err := h.Quotes.Create(svcIn)
	if err != nil {
		writeServiceError(w, err, "quote_create_failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in quoteInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	svcIn, ok := in.toService()
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"valid_until": "invalid_date"})
		return
	}
	quote, err := h.Quotes.Update(id, svcIn)
	if err != nil {
		writeServiceError(w, err, "quote_update_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Quotes.Delete(id); err != nil {
		writeServiceError(w, err, "quote_delete_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *QuoteHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Quotes.Approve)
}

func (h *QuoteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Quotes.Reject)
}

func (h *QuoteHandler) transition(w http.ResponseWriter, r *http.Request, fn func(uint) (*models.Quote, error)) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	quote, err := fn(id)
	if err != nil {
		writeServiceError(w, err, "quote_transition_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Convert turns an approved quote into a new in-progress sale.
func (h *QuoteHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Quotes.Convert(id)
	if err != nil {
		writeServiceError(w, err, "quote_convert_failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

// PDF streams the quote document.
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	quote, err := h.Quotes.Get(id)
	if err != nil {
		writeServiceError(w, err, "quote_load_failed")
		return
	}
	data, err := pdf.Quote(h.Profile.Get(), quote, h.now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}
	httpx.Attachment(w, "application/pdf", fmt.Sprintf("orcamento_%s.pdf", quote.Number), data)
}
