package handlers

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
)

// SearchHandler serves the recipient autocomplete shared by quote and sale
// forms: clients and companies matched on name, document or numeric id.
type SearchHandler struct {
	DB *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler { return &SearchHandler{DB: db} }

const recipientLimit = 10

func (h *SearchHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	kind := r.URL.Query().Get("type")
	like := likePattern(q)
	id, _ := strconv.Atoi(q)

	results := make([]map[string]any, 0, recipientLimit)

	if kind == "" || kind == "client" {
		var clients []models.Client
		dbq := h.DB.Where("active = ?", true)
		if id > 0 {
			dbq = dbq.Where("lower(name) LIKE ? OR cpf LIKE ? OR id = ?", like, like, id)
		} else {
			dbq = dbq.Where("lower(name) LIKE ? OR cpf LIKE ?", like, like)
		}
		if err := dbq.Order("name asc").Limit(recipientLimit).Find(&clients).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "search_failed", nil)
			return
		}
		for _, c := range clients {
			results = append(results, map[string]any{
				"id":       c.ID,
				"type":     "client",
				"name":     c.Name,
				"document": c.CPF,
			})
		}
	}

	if kind == "" || kind == "company" {
		var companies []models.Company
		dbq := h.DB.Where("active = ?", true)
		if id > 0 {
			dbq = dbq.Where("lower(name) LIKE ? OR cnpj LIKE ? OR id = ?", like, like, id)
		} else {
			dbq = dbq.Where("lower(name) LIKE ? OR cnpj LIKE ?", like, like)
		}
		if err := dbq.Order("name asc").Limit(recipientLimit).Find(&companies).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "search_failed", nil)
			return
		}
		for _, c := range companies {
			results = append(results, map[string]any{
				"id":       c.ID,
				"type":     "company",
				"name":     c.Name,
				"document": c.CNPJ,
			})
		}
	}

	if len(results) > recipientLimit {
		results = results[:recipientLimit]
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}
