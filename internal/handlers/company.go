package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/validation"
)

type CompanyHandler struct {
	DB *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler { return &CompanyHandler{DB: db} }

type companyInput struct {
	CNPJ        string `json:"cnpj"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	Active      *bool  `json:"active"`
}

func (in *companyInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !models.ValidCNPJ(in.CNPJ) {
		v["cnpj"] = "invalid_format"
	}
	return v
}

func (in *companyInput) apply(c *models.Company) {
	c.CNPJ = in.CNPJ
	c.Name = in.Name
	c.ContactName = in.ContactName
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.Notes = in.Notes
	if in.Active != nil {
		c.Active = *in.Active
	}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Company{})
	if q := r.URL.Query().Get("q"); q != "" {
		like := likePattern(q)
		dbq = dbq.Where("lower(name) LIKE ? OR cnpj LIKE ?", like, like)
	}
	if v := r.URL.Query().Get("active"); v != "" {
		dbq = dbq.Where("active = ?", v == "true")
	}
	var total int64
	dbq.Count(&total)
	var companies []models.Company
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&companies).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_companies", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": companies, "total": total, "limit": limit, "offset": offset})
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Company
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in companyInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Company{Active: true}
	in.apply(&c)
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "company_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Company
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in companyInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in.apply(&c)
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "company_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Delete(&models.Company{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "company_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
