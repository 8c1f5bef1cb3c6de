package bundle_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-addons/internal/bundle"
	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

type Handler struct {
	Bundles *bundle.BundleService
	Logger  *logger.Logger
}

func NewHandler(bundles *bundle.BundleService, log *logger.Logger) *Handler {
	return &Handler{Bundles: bundles, Logger: log}
}

// validationResponse is what the UI consumes: every finding from one pass,
// with both the structured records and the rendered messages.
type validationResponse struct {
	IsValid bool                     `json:"isValid"`
	Errors  []bundle.ValidationError `json:"errors"`
}

// ReplaceBundle creates or replaces the experience's bundle. An invalid
// submission returns 422 with the full error list rather than a single
// message.
func (h *Handler) ReplaceBundle(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")
	h.Logger.Info("API", fmt.Sprintf("ReplaceBundle: experienceId=%s", experienceID))

	b, ok := h.decodeBundle(w, r, experienceID)
	if !ok {
		return
	}

	result, err := h.Bundles.ReplaceBundle(r.Context(), b)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReplaceBundle: %v", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !result.IsValid {
		status = http.StatusUnprocessableEntity
	}
	h.respondJSON(w, status, validationResponse{IsValid: result.IsValid, Errors: result.Errors})
}

func (h *Handler) GetBundle(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")

	b, err := h.Bundles.GetBundle(r.Context(), experienceID)
	if err != nil {
		h.respondError(w, "GetBundle", err)
		return
	}

	h.respondJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")
	h.Logger.Info("API", fmt.Sprintf("DeleteBundle: experienceId=%s", experienceID))

	if err := h.Bundles.ClearBundle(r.Context(), experienceID); err != nil {
		h.respondError(w, "DeleteBundle", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ValidateBundle dry-runs validation of a proposed bundle without persisting.
func (h *Handler) ValidateBundle(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")

	b, ok := h.decodeBundle(w, r, experienceID)
	if !ok {
		return
	}

	result := h.Bundles.Validate(r.Context(), b)
	h.respondJSON(w, http.StatusOK, validationResponse{IsValid: result.IsValid, Errors: result.Errors})
}

// QuoteBundle prices the stored bundle under the requested selections.
func (h *Handler) QuoteBundle(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")

	var req models.PriceQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	total, err := h.Bundles.Quote(r.Context(), experienceID, bundle.PriceOptions{
		IncludeOptional:     req.IncludeOptional,
		SelectedOptionalIDs: req.SelectedOptionalIDs,
		Quantities:          req.Quantities,
	})
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("QuoteBundle: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respondJSON(w, http.StatusOK, models.PriceQuoteResponse{
		ExperienceID: experienceID,
		AddonsTotal:  total,
	})
}

func (h *Handler) GetCommissions(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")

	total, byPartner, err := h.Bundles.CommissionSplit(r.Context(), experienceID)
	if err != nil {
		h.respondError(w, "GetCommissions", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.CommissionResponse{
		ExperienceID:    experienceID,
		TotalCommission: total,
		ByPartner:       byPartner,
	})
}

// decodeBundle parses the request body and constructs a validated bundle.
// A structurally invalid bundle (duplicate IDs, bad reference fields) is a
// 400; catalog-level findings are left to the validator.
func (h *Handler) decodeBundle(w http.ResponseWriter, r *http.Request, experienceID string) (*models.AddonBundle, bool) {
	var req models.BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("decodeBundle: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	b, err := models.NewAddonBundle(experienceID, req.IncludedAddOns, req.OptionalAddOns)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("decodeBundle: invalid bundle: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return b, true
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
	if errors.As(err, &validationErr) {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", operation, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Error("API", fmt.Sprintf("%s: %v", operation, err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
