package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tornearia/internal/httpx"
	"tornearia/internal/services"
)

const dateLayout = "2006-01-02"

// idParam reads the numeric id from the query string, falling back to the
// form body.
func idParam(r *http.Request) uint {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		idStr = r.FormValue("id")
	}
	id, _ := strconv.Atoi(idStr)
	if id <= 0 {
		return 0
	}
	return uint(id)
}

// pageParams reads limit/page pagination from the query string.
func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

var unsafeSearch = regexp.MustCompile(`[%_\\]`)

// likePattern builds a case-insensitive LIKE pattern from a user query.
// LIKE metacharacters are stripped rather than escaped: sqlite has no
// default ESCAPE character.
func likePattern(q string) string {
	safe := unsafeSearch.ReplaceAllString(strings.TrimSpace(q), "")
	return "%" + strings.ToLower(safe) + "%"
}

// parseDate parses an ISO date, returning ok=false on bad input.
func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// conflictCodes maps the lifecycle sentinels to response codes.
var conflictCodes = map[error]string{
	services.ErrAlreadyCompleted:   "sale_already_completed",
	services.ErrSaleCancelled:      "sale_cancelled",
	services.ErrCompletedImmutable: "sale_completed_immutable",
	services.ErrCancelCompleted:    "cannot_cancel_completed",
	services.ErrQuoteNotPending:    "quote_not_pending",
	services.ErrQuoteNotApproved:   "quote_not_approved",
	services.ErrPayrollProcessed:   "payroll_already_processed",
	services.ErrItemReferenced:     "item_in_use",
}

// writeServiceError translates a service error into the matching HTTP
// response: 400 for validation, 409 for illegal transitions, 404 for
// missing rows, 500 otherwise.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Fields)
		return
	}
	for sentinel, code := range conflictCodes {
		if errors.Is(err, sentinel) {
			httpx.JSONError(w, http.StatusConflict, code, nil)
			return
		}
	}
	if services.IsNotFound(err) {
		httpx.NotFound(w)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, fallback, nil)
}
