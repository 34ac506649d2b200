package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientInput struct {
	CPF     string `json:"cpf"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
	Active  *bool  `json:"active"`
}

func (in *clientInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !models.ValidCPF(in.CPF) {
		v["cpf"] = "invalid_format"
	}
	return v
}

func (in *clientInput) apply(c *models.Client) {
	c.CPF = in.CPF
	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.Notes = in.Notes
	if in.Active != nil {
		c.Active = *in.Active
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Client{})
	if q := r.URL.Query().Get("q"); q != "" {
		like := likePattern(q)
		dbq = dbq.Where("lower(name) LIKE ? OR cpf LIKE ?", like, like)
	}
	if v := r.URL.Query().Get("active"); v != "" {
		dbq = dbq.Where("active = ?", v == "true")
	}
	var total int64
	dbq.Count(&total)
	var clients []models.Client
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Client
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Client{Active: true}
	in.apply(&c)
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "client_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Client
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in clientInput
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
		httpx.JSONError(w, http.StatusInternalServerError, "client_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Delete(&models.Client{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "client_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
