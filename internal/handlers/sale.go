package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/mail"
	"tornearia/internal/models"
	"tornearia/internal/pdf"
	"tornearia/internal/profile"
	"tornearia/internal/services"
)

type SaleHandler struct {
	DB      *gorm.DB
	Sales   *services.SaleService
	Profile *profile.Store
	Mailer  *mail.Mailer
	now     func() time.Time
}

func NewSaleHandler(db *gorm.DB, sales *services.SaleService, store *profile.Store, mailer *mail.Mailer) *SaleHandler {
	return &SaleHandler{DB: db, Sales: sales, Profile: store, Mailer: mailer, now: time.Now}
}

type saleInput struct {
	ClientID         *uint                `json:"client_id"`
	CompanyID        *uint                `json:"company_id"`
	EntryDate        string               `json:"entry_date"`
	Discount         decimal.Decimal      `json:"discount"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	PaymentKind      models.PaymentKind   `json:"payment_kind"`
	InstallmentCount int                  `json:"installment_count"`
	Notes            string               `json:"notes"`
	Items            []services.LineInput `json:"items"`
}

func (in *saleInput) toService() (services.SaleInput, bool) {
	entry, ok := parseDate(in.EntryDate)
	if !ok {
		return services.SaleInput{}, false
	}
	return services.SaleInput{
		ClientID:         in.ClientID,
		CompanyID:        in.CompanyID,
		EntryDate:        entry,
		Discount:         in.Discount,
		PaymentMethod:    in.PaymentMethod,
		PaymentKind:      in.PaymentKind,
		InstallmentCount: in.InstallmentCount,
		Notes:            in.Notes,
		Items:            in.Items,
	}, true
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Sale{})
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("lower(number) LIKE ?", likePattern(q))
	}
	if v := r.URL.Query().Get("status"); v != "" {
		dbq = dbq.Where("status = ?", v)
	}
	if from, ok := parseDate(r.URL.Query().Get("from")); ok && !from.IsZero() {
		dbq = dbq.Where("entry_date >= ?", from)
	}
	if to, ok := parseDate(r.URL.Query().Get("to")); ok && !to.IsZero() {
		dbq = dbq.Where("entry_date <= ?", to)
	}
	var total int64
	dbq.Count(&total)
	var sales []models.Sale
	err := dbq.
		Preload("Items.Item").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Preload("Client").
		Preload("Company").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_sales", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": sales, "total": total, "limit": limit, "offset": offset})
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Get(id)
	if err != nil {
		writeServiceError(w, err, "sale_load_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in saleInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	svcIn, ok := in.toService()
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"entry_date": "invalid_date"})
		return
	}
	sale, err := h.Sales.Create(svcIn)
	if err != nil {
		writeServiceError(w, err, "sale_create_failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in saleInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	svcIn, ok := in.toService()
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"entry_date": "invalid_date"})
		return
	}
	sale, err := h.Sales.Update(id, svcIn)
	if err != nil {
		writeServiceError(w, err, "sale_update_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Sales.Delete(id); err != nil {
		writeServiceError(w, err, "sale_delete_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *SaleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Complete(id)
	if err != nil {
		writeServiceError(w, err, "sale_complete_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Cancel(id)
	if err != nil {
		writeServiceError(w, err, "sale_cancel_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) RegenerateInstallments(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.RegenerateInstallments(id)
	if err != nil {
		writeServiceError(w, err, "installments_regenerate_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inst, err := h.Sales.PayInstallment(id)
	if err != nil {
		writeServiceError(w, err, "installment_pay_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *SaleHandler) UnpayInstallment(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inst, err := h.Sales.UnpayInstallment(id)
	if err != nil {
		writeServiceError(w, err, "installment_unpay_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}

// PDF streams the sale document: a receipt once completed, a service order
// while in progress.
func (h *SaleHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Get(id)
	if err != nil {
		writeServiceError(w, err, "sale_load_failed")
		return
	}
	data, err := pdf.SaleReceipt(h.Profile.Get(), sale, h.now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}
	httpx.Attachment(w, "application/pdf", fmt.Sprintf("venda_%s.pdf", sale.Number), data)
}

// Email sends the sale document to the company contact, else the client.
// A transport failure is reported as a gateway error and touches nothing.
func (h *SaleHandler) Email(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Get(id)
	if err != nil {
		writeServiceError(w, err, "sale_load_failed")
		return
	}

	var to string
	if sale.Company != nil && sale.Company.Email != "" {
		to = sale.Company.Email
	} else if sale.Client != nil && sale.Client.Email != "" {
		to = sale.Client.Email
	}
	if to == "" {
		httpx.JSONError(w, http.StatusBadRequest, "no_recipient_email", nil)
		return
	}

	prof := h.Profile.Get()
	data, err := pdf.SaleReceipt(prof, sale, h.now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}
	msg := mail.Message{
		To:             to,
		Subject:        fmt.Sprintf("%s - Documento %s", prof.Name, sale.Number),
		Body:           fmt.Sprintf("Olá %s,\n\nSegue em anexo o documento %s.\n\nAtenciosamente,\n%s", sale.RecipientName(), sale.Number, prof.Name),
		AttachmentName: fmt.Sprintf("venda_%s.pdf", sale.Number),
		Attachment:     data,
	}
	if err := h.Mailer.Send(msg); err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "email_send_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sent_to": to, "number": sale.Number})
}
