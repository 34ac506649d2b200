package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/services"
)

type PayrollHandler struct {
	DB      *gorm.DB
	Payroll *services.PayrollService
}

func NewPayrollHandler(db *gorm.DB, payroll *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{DB: db, Payroll: payroll}
}

func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	var runs []models.PayrollRun
	if err := h.DB.Order("year desc, month desc").Find(&runs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payroll", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": runs})
}

// Generate creates or refreshes the run for a period. Re-generating a
// processed run is refused; the existing run is returned alongside the
// conflict so the caller can show it.
func (h *PayrollHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		// also accept query params for convenience
		in.Month, _ = strconv.Atoi(r.URL.Query().Get("month"))
		in.Year, _ = strconv.Atoi(r.URL.Query().Get("year"))
	}
	run, covered, err := h.Payroll.Generate(in.Month, in.Year)
	if err != nil {
		if errors.Is(err, services.ErrPayrollProcessed) {
			httpx.JSONError(w, http.StatusConflict, "payroll_already_processed", map[string]any{"run": run})
			return
		}
		writeServiceError(w, err, "payroll_generate_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"run": run, "employees_covered": covered})
}

func (h *PayrollHandler) Process(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	run, err := h.Payroll.Process(id)
	if err != nil {
		writeServiceError(w, err, "payroll_process_failed")
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}
