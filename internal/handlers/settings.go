package handlers

import (
	"net/http"

	"tornearia/internal/httpx"
	"tornearia/internal/models"
	"tornearia/internal/profile"
	"tornearia/internal/validation"
)

type SettingsHandler struct {
	Profile *profile.Store
}

func NewSettingsHandler(store *profile.Store) *SettingsHandler {
	return &SettingsHandler{Profile: store}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Profile.Get())
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name         string `json:"name"`
		CNPJ         string `json:"cnpj"`
		Address      string `json:"address"`
		Phone        string `json:"phone"`
		Email        string `json:"email"`
		LogoPath     string `json:"logo_path"`
		DefaultNotes string `json:"default_notes"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !models.ValidCNPJ(in.CNPJ) {
		v["cnpj"] = "invalid_format"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := h.Profile.Get()
	p.Name = in.Name
	p.CNPJ = in.CNPJ
	p.Address = in.Address
	p.Phone = in.Phone
	p.Email = in.Email
	p.LogoPath = in.LogoPath
	p.DefaultNotes = in.DefaultNotes
	updated, err := h.Profile.Update(p)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "settings_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
