package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/validation"
)

type ExpenseHandler struct {
	DB *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler { return &ExpenseHandler{DB: db} }

type expenseInput struct {
	Description string             `json:"description"`
	CategoryID  *uint              `json:"category_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Date        string             `json:"date"`
	Kind        models.ExpenseKind `json:"kind"`
	EmployeeID  *uint              `json:"employee_id"`
	Notes       string             `json:"notes"`
}

func (in *expenseInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("description", in.Description, v)
	validation.PositiveDecimal("amount", in.Amount, v)
	if in.Kind == "" {
		in.Kind = models.ExpenseVariable
	}
	if !in.Kind.Valid() {
		v["kind"] = "unknown_kind"
	}
	if d, ok := parseDate(in.Date); !ok || d.IsZero() {
		v["date"] = "invalid_date"
	}
	return v
}

func (in *expenseInput) apply(e *models.Expense) {
	e.Description = in.Description
	e.CategoryID = in.CategoryID
	e.Amount = in.Amount
	e.Kind = in.Kind
	e.EmployeeID = in.EmployeeID
	e.Notes = in.Notes
	if d, ok := parseDate(in.Date); ok && !d.IsZero() {
		e.Date = d
	}
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Expense{})
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("lower(description) LIKE ?", likePattern(q))
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		dbq = dbq.Where("kind = ?", v)
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		dbq = dbq.Where("category_id = ?", v)
	}
	if from, ok := parseDate(r.URL.Query().Get("from")); ok && !from.IsZero() {
		dbq = dbq.Where("date >= ?", from)
	}
	if to, ok := parseDate(r.URL.Query().Get("to")); ok && !to.IsZero() {
		dbq = dbq.Where("date <= ?", to)
	}
	var total int64
	dbq.Count(&total)
	var expenses []models.Expense
	err := dbq.
		Preload("Category").
		Preload("Employee").
		Order("date desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_expenses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": total, "limit": limit, "offset": offset})
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var e models.Expense
	if err := h.DB.Preload("Category").Preload("Employee").First(&e, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in expenseInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var e models.Expense
	in.apply(&e)
	if err := h.DB.Create(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "expense_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var e models.Expense
	if err := h.DB.First(&e, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in expenseInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in.apply(&e)
	updates := map[string]interface{}{
		"description": e.Description,
		"category_id": e.CategoryID,
		"amount":      e.Amount,
		"date":        e.Date,
		"kind":        e.Kind,
		"employee_id": e.EmployeeID,
		"notes":       e.Notes,
	}
	if err := h.DB.Model(&e).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "expense_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Delete(&models.Expense{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "expense_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler { return &CategoryHandler{DB: db} }

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var categories []models.ExpenseCategory
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": categories})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.ExpenseCategory{Name: in.Name, Description: in.Description}
	if in.Color != "" {
		c.Color = in.Color
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "category_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.ExpenseCategory
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in categoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c.Name = in.Name
	c.Description = in.Description
	if in.Color != "" {
		c.Color = in.Color
	}
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "category_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete removes a category; expenses keep their rows with the category
// cleared.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Expense{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ExpenseCategory{}, id).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "category_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
