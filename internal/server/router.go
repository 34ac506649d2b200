package server

import (
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"
	"gorm.io/gorm"

	"tornearia/internal/handlers"
	"tornearia/internal/httpx"
	"tornearia/internal/mail"
	"tornearia/internal/profile"
	"tornearia/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, store *profile.Store, mailer *mail.Mailer, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	salesSvc := services.NewSaleService(db)
	quotesSvc := services.NewQuoteService(db, salesSvc)
	payrollSvc := services.NewPayrollService(db)
	dashboardSvc := services.NewDashboardService(db)

	// Registries
	crud(mux, "/companies", handlers.NewCompanyHandler(db))
	crud(mux, "/clients", handlers.NewClientHandler(db))
	crud(mux, "/employees", handlers.NewEmployeeHandler(db))

	// Catalog
	itemH := handlers.NewItemHandler(db)
	crud(mux, "/items", itemH)
	mux.HandleFunc("/items/search", get(itemH.Search))
	mux.HandleFunc("/items/price", get(itemH.Price))

	// Quotes
	quoteH := handlers.NewQuoteHandler(db, quotesSvc, store)
	crud(mux, "/quotes", quoteH)
	mux.HandleFunc("/quotes/approve", post(quoteH.Approve))
	mux.HandleFunc("/quotes/reject", post(quoteH.Reject))
	mux.HandleFunc("/quotes/convert", post(quoteH.Convert))
	mux.HandleFunc("/quotes/pdf", get(quoteH.PDF))

	// Sales
	saleH := handlers.NewSaleHandler(db, salesSvc, store, mailer)
	crud(mux, "/sales", saleH)
	mux.HandleFunc("/sales/complete", post(saleH.Complete))
	mux.HandleFunc("/sales/cancel", post(saleH.Cancel))
	mux.HandleFunc("/sales/installments/regenerate", post(saleH.RegenerateInstallments))
	mux.HandleFunc("/installments/pay", post(saleH.PayInstallment))
	mux.HandleFunc("/installments/unpay", post(saleH.UnpayInstallment))
	mux.HandleFunc("/sales/pdf", get(saleH.PDF))
	mux.HandleFunc("/sales/email", post(saleH.Email))

	// Finance
	crud(mux, "/expenses", handlers.NewExpenseHandler(db))
	categoryH := handlers.NewCategoryHandler(db)
	mux.HandleFunc("/expense-categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoryH.List(w, r)
		case http.MethodPost:
			categoryH.Create(w, r)
		case http.MethodPut, http.MethodPatch:
			categoryH.Update(w, r)
		case http.MethodDelete:
			categoryH.Delete(w, r)
		default:
			w.Header().Set("Allow", "GET,POST,PUT,PATCH,DELETE")
			httpx.MethodNotAllowed(w)
		}
	})

	payrollH := handlers.NewPayrollHandler(db, payrollSvc)
	mux.HandleFunc("/payroll", get(payrollH.List))
	mux.HandleFunc("/payroll/generate", post(payrollH.Generate))
	mux.HandleFunc("/payroll/process", post(payrollH.Process))

	// Dashboard
	dashH := handlers.NewDashboardHandler(dashboardSvc)
	mux.HandleFunc("/dashboard", get(dashH.Summary))
	mux.HandleFunc("/dashboard/data", get(dashH.Data))

	// Settings & search
	settingsH := handlers.NewSettingsHandler(store)
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsH.Get(w, r)
		case http.MethodPut, http.MethodPost, http.MethodPatch:
			settingsH.Update(w, r)
		default:
			w.Header().Set("Allow", "GET,PUT")
			httpx.MethodNotAllowed(w)
		}
	})
	mux.HandleFunc("/search/recipients", get(handlers.NewSearchHandler(db).Recipients))

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(withRecover(withLogging(mux)))
}

// crudHandler is the method set shared by the entity handlers.
type crudHandler interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// crud wires a handler's CRUD methods onto path and path/get|update|delete.
// List/Create share the collection path; id-based operations take ?id=.
func crud(mux *http.ServeMux, path string, h crudHandler) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.MethodNotAllowed(w)
		}
	})
	mux.HandleFunc(path+"/get", get(h.Get))
	mux.HandleFunc(path+"/update", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			h.Update(w, r)
		default:
			w.Header().Set("Allow", "POST,PUT,PATCH")
			httpx.MethodNotAllowed(w)
		}
	})
	mux.HandleFunc(path+"/delete", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodDelete:
			h.Delete(w, r)
		default:
			w.Header().Set("Allow", "POST,DELETE")
			httpx.MethodNotAllowed(w)
		}
	})
}

func get(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httpx.MethodNotAllowed(w)
			return
		}
		fn(w, r)
	}
}

func post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.MethodNotAllowed(w)
			return
		}
		fn(w, r)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
