package addon_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-addons/internal/addon"
	"ms-addons/internal/auth"
	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

type Handler struct {
	Catalog *addon.CatalogService
	Logger  *logger.Logger
}

func NewHandler(catalog *addon.CatalogService, log *logger.Logger) *Handler {
	return &Handler{Catalog: catalog, Logger: log}
}

func (h *Handler) CreateAddon(w http.ResponseWriter, r *http.Request) {
	var req models.AddonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateAddon: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := models.AddonParams{
		ID:           req.ID,
		ProductID:    req.ProductID,
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Category:     req.Category,
		Pricing:      req.Pricing,
		Media:        req.Media,
		MainImageURL: req.MainImageURL,
		IsAvailable:  req.IsAvailable,
		Tags:         req.Tags,
		PartnerID:    req.PartnerID,
	}
	// Partners can only create add-ons they own; admins may set any partner.
	if !auth.IsAdmin(r.Context()) {
		params.PartnerID = auth.UserID(r.Context())
	}

	created, err := h.Catalog.CreateAddon(r.Context(), params)
	if err != nil {
		h.respondError(w, "CreateAddon", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, models.NewAddonResponse(created))
}

func (h *Handler) GetAddon(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	h.Logger.Info("API", fmt.Sprintf("GetAddon: addonId=%s", addonID))

	a, err := h.Catalog.GetAddon(r.Context(), addonID)
	if err != nil {
		h.respondError(w, "GetAddon", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.NewAddonResponse(a))
}

func (h *Handler) ListAddons(w http.ResponseWriter, r *http.Request) {
	filter := addon.ListFilter{
		PartnerID: r.URL.Query().Get("partner_id"),
		Category:  r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("available"); raw != "" {
		available := raw == "true"
		filter.Available = &available
	}

	addons, err := h.Catalog.ListAddons(r.Context(), filter)
	if err != nil {
		h.respondError(w, "ListAddons", err)
		return
	}

	responses := make([]models.AddonResponse, 0, len(addons))
	for _, a := range addons {
		responses = append(responses, models.NewAddonResponse(a))
	}
	h.respondJSON(w, http.StatusOK, responses)
}

// verifyAddonOwnership checks that the caller may mutate the add-on. Partners
// may only touch add-ons carrying their own partner ID; admins may touch
// everything. Writes the error response itself and returns false on refusal.
func (h *Handler) verifyAddonOwnership(w http.ResponseWriter, r *http.Request, addonID string) bool {
	if auth.IsAdmin(r.Context()) {
		return true
	}

	a, err := h.Catalog.GetAddon(r.Context(), addonID)
	if err != nil {
		h.respondError(w, "VerifyOwnership", err)
		return false
	}

	callerID := auth.UserID(r.Context())
	if a.PartnerID == "" || a.PartnerID != callerID {
		h.Logger.Warn("API", fmt.Sprintf("ownership check failed: add-on %s does not belong to %s", addonID, callerID))
		http.Error(w, "You do not own this add-on", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) UpdateAddon(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	var req struct {
		Name        string               `json:"name,omitempty"`
		Description string               `json:"description,omitempty"`
		Category    string               `json:"category,omitempty"`
		Pricing     *models.AddonPricing `json:"pricing,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.Catalog.UpdateDetails(r.Context(), addonID, req.Name, req.Description, req.Category)
	if err != nil {
		h.respondError(w, "UpdateAddon", err)
		return
	}

	if req.Pricing != nil {
		a, err = h.Catalog.UpdatePricing(r.Context(), addonID, *req.Pricing)
		if err != nil {
			h.respondError(w, "UpdateAddon", err)
			return
		}
	}

	h.respondJSON(w, http.StatusOK, models.NewAddonResponse(a))
}

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.Catalog.SetAvailability(r.Context(), addonID, req.IsAvailable)
	if err != nil {
		h.respondError(w, "SetAvailability", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.NewAddonResponse(a))
}

func (h *Handler) AddMedia(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	var media models.AddonMedia
	if err := json.NewDecoder(r.Body).Decode(&media); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.Catalog.AddMedia(r.Context(), addonID, media)
	if err != nil {
		h.respondError(w, "AddMedia", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.NewAddonResponse(a))
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	added, err := h.Catalog.AddTag(r.Context(), addonID, req.Tag)
	if err != nil {
		h.respondError(w, "AddTag", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"added": added})
}

func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	tag := chi.URLParam(r, "tag")
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	removed, err := h.Catalog.RemoveTag(r.Context(), addonID, tag)
	if err != nil {
		h.respondError(w, "RemoveTag", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) DeleteAddon(w http.ResponseWriter, r *http.Request) {
	addonID := chi.URLParam(r, "addonId")
	h.Logger.Info("API", fmt.Sprintf("DeleteAddon: addonId=%s", addonID))
	if !h.verifyAddonOwnership(w, r, addonID) {
		return
	}

	if err := h.Catalog.DeleteAddon(r.Context(), addonID); err != nil {
		if errors.Is(err, addon.ErrAddonInUse) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.respondError(w, "DeleteAddon", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, operation string, err error) {
	var validationErr *models.AddonValidationError
	switch {
	case errors.Is(err, addon.ErrAddonNotFound):
		h.Logger.Warn("API", fmt.Sprintf("%s: add-on not found", operation))
		http.Error(w, "Add-on not found", http.StatusNotFound)
	case errors.As(err, &validationErr):
		h.Logger.Warn("API", fmt.Sprintf("%s: validation failed: %v", operation, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", operation, err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
