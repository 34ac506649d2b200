package handlers

import (
	"net/http"

	"tornearia/internal/httpx"
	"tornearia/internal/services"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// Summary aggregates the financial overview for a date range, defaulting to
// the current month.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, okFrom := parseDate(r.URL.Query().Get("from"))
	to, okTo := parseDate(r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date_range", nil)
		return
	}
	if from.IsZero() || to.IsZero() {
		from, to = h.Dashboard.DefaultRange()
	}
	if to.Before(from) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date_range", nil)
		return
	}
	summary, err := h.Dashboard.Summarize(from, to)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "dashboard_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Data returns the chart series: twelve trailing months of revenue and
// expenses plus the top items and categories.
func (h *DashboardHandler) Data(w http.ResponseWriter, r *http.Request) {
	charts, err := h.Dashboard.Charts()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "dashboard_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, charts)
}
