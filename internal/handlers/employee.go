package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/validation"
)

type EmployeeHandler struct {
	DB *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler { return &EmployeeHandler{DB: db} }

type employeeInput struct {
	Name          string                `json:"name"`
	Role          string                `json:"role"`
	Salary        decimal.Decimal       `json:"salary"`
	AdmissionDate string                `json:"admission_date"`
	Status        models.EmployeeStatus `json:"status"`
	Phone         string                `json:"phone"`
	Notes         string                `json:"notes"`
}

func (in *employeeInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.PositiveDecimal("salary", in.Salary, v)
	if in.Status == "" {
		in.Status = models.EmployeeActive
	}
	if !in.Status.Valid() {
		v["status"] = "unknown_status"
	}
	if _, ok := parseDate(in.AdmissionDate); !ok {
		v["admission_date"] = "invalid_date"
	}
	return v
}

func (in *employeeInput) apply(e *models.Employee) {
	e.Name = in.Name
	e.Role = in.Role
	e.Salary = in.Salary
	e.Status = in.Status
	e.Phone = in.Phone
	e.Notes = in.Notes
	if d, ok := parseDate(in.AdmissionDate); ok && !d.IsZero() {
		e.AdmissionDate = &d
	} else if in.AdmissionDate == "" {
		e.AdmissionDate = nil
	}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	dbq := h.DB.Model(&models.Employee{})
	if q := r.URL.Query().Get("q"); q != "" {
		like := likePattern(q)
		dbq = dbq.Where("lower(name) LIKE ? OR lower(role) LIKE ?", like, like)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		dbq = dbq.Where("status = ?", v)
	}
	var total int64
	dbq.Count(&total)
	var employees []models.Employee
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&employees).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_employees", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": employees, "total": total, "limit": limit, "offset": offset})
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in employeeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var e models.Employee
	in.apply(&e)
	if err := h.DB.Create(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "employee_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		httpx.NotFound(w)
		return
	}
	var in employeeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in.apply(&e)
	if err := h.DB.Save(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "employee_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Delete(&models.Employee{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "employee_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
