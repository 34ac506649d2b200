package handlers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/services"
	"tornearia/internal/validation"
)

type ItemHandler struct {
	DB *gorm.DB
}

func NewItemHandler(db *gorm.DB) *ItemHandler { return &ItemHandler{DB: db} }

type itemInput struct {
	Kind        models.ItemKind `json:"kind"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	StockQty    int             `json:"stock_qty"`
	MinStock    int             `json:"min_stock"`
	Active      *bool           `json:"active"`
}

func (in *itemInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.PositiveDecimal("price", in.Price, v)
	if !in.Kind.Valid() {
		v["kind"] = "unknown_kind"
	}
	if in.StockQty < 0 {
		v["stock_qty"] = "must_not_be_negative"
	}
	if in.MinStock < 0 {
		v["min_stock"] = "must_not_be_negative"
	}
	return v
}

func (in *itemInput) apply(it *models.Item) {
	it.Kind = in.Kind
	it.Name = in.Name
	it.Price = in.Price
	it.Description = in.Description
	it.StockQty = in.StockQty
	it.MinStock = in.MinStock
	if in.Active != nil {
		it.Active = *in.Active
	}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Item{})
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("lower(name) LIKE ?", likePattern(q))
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		dbq = dbq.Where("kind = ?", v)
	}
	if v := r.URL.Query().Get("active"); v != "" {
		dbq = dbq.Where("active = ?", v == "true")
	}
	if r.URL.Query().Get("low_stock") == "true" {
		dbq = dbq.Where("kind = ? AND stock_qty <= min_stock", models.ItemProduct)
	}
	var total int64
	dbq.Count(&total)
	var items []models.Item
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_items", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var it models.Item
	if err := h.DB.First(&it, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in itemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	it := models.Item{Active: true}
	in.apply(&it)
	if err := h.DB.Create(&it).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "item_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, it)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var it models.Item
	if err := h.DB.First(&it, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in itemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in.apply(&it)
	if err := h.DB.Save(&it).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "item_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

// Delete refuses to remove an item referenced by any quote or sale line.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var refs int64
	h.DB.Model(&models.QuoteItem{}).Where("item_id = ?", id).Count(&refs)
	if refs == 0 {
		h.DB.Model(&models.SaleItem{}).Where("item_id = ?", id).Count(&refs)
	}
	if refs > 0 {
		writeServiceError(w, services.ErrItemReferenced, "item_delete_failed")
		return
	}
	if err := h.DB.Delete(&models.Item{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "item_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Search returns up to 20 active items for the autocomplete widget.
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Item{}).Where("active = ?", true)
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("lower(name) LIKE ?", likePattern(q))
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		dbq = dbq.Where("kind = ?", v)
	}
	var items []models.Item
	if err := dbq.Order("name asc").Limit(20).Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "search_failed", nil)
		return
	}
	results := make([]map[string]any, 0, len(items))
	for _, it := range items {
		results = append(results, map[string]any{
			"id":    it.ID,
			"name":  it.Name,
			"kind":  it.Kind,
			"price": it.Price,
			"stock": it.StockQty,
			"label": fmt.Sprintf("%s (%s)", it.Name, it.Kind),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}

// Price looks up the current catalog price for a single item.
func (h *ItemHandler) Price(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var it models.Item
	if err := h.DB.First(&it, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": it.ID, "price": it.Price})
}
