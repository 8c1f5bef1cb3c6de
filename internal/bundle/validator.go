package bundle

import (
	"context"
	"fmt"

	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

// catalogChunkSize bounds the batched existence lookups against the catalog,
// matching the document-database "IN" query limit the catalog was built for.
const catalogChunkSize = 10

// Catalog is the read side of the add-on catalog the validator resolves
// references against. Missing IDs are simply absent from the result.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error)
}

type ValidationErrorKind string

const (
	ErrKindMissingExperience ValidationErrorKind = "missing_experience"
	ErrKindDuplicateAddon    ValidationErrorKind = "duplicate_addon"
	ErrKindAddonNotFound     ValidationErrorKind = "addon_not_found"
	ErrKindAddonUnavailable  ValidationErrorKind = "addon_unavailable"
	ErrKindInvalidPricing    ValidationErrorKind = "invalid_pricing"
	ErrKindInvalidQuantity   ValidationErrorKind = "invalid_quantity"
	ErrKindCatalogLookup     ValidationErrorKind = "catalog_lookup_failed"
)

// ValidationError is a single machine-inspectable validation finding.
type ValidationError struct {
	Kind    ValidationErrorKind `json:"kind"`
	AddonID string              `json:"addOnId,omitempty"`
	Field   string              `json:"field,omitempty"`
	Message string              `json:"message"`
}

// ValidationResult accumulates every finding from one validation pass so a
// single call surfaces all problems at once.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

func (r *ValidationResult) add(err ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, err)
}

// Messages renders the human-readable strings the API boundary returns.
func (r ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Validator cross-checks bundle contents against the canonical add-on
// catalog before persistence.
type Validator struct {
	Catalog Catalog
	Logger  *logger.Logger
}

func NewValidator(catalog Catalog, log *logger.Logger) *Validator {
	return &Validator{Catalog: catalog, Logger: log}
}

// ValidateBundle confirms referential and business validity of a bundle. It
// never short-circuits: all findings are accumulated into one result, and
// catalog failures are converted into a finding rather than propagated.
func (v *Validator) ValidateBundle(ctx context.Context, b *models.AddonBundle) ValidationResult {
	result := ValidationResult{IsValid: true, Errors: []ValidationError{}}

	if b == nil || b.ExperienceID == "" {
		result.add(ValidationError{
			Kind:    ErrKindMissingExperience,
			Field:   "experienceId",
			Message: "Experience ID is required",
		})
		return result
	}

	// An empty add-on set means "no add-ons configured", which is valid.
	if b.IsEmpty() {
		return result
	}

	refs := make([]models.AddonReference, 0, b.TotalCount())
	refs = append(refs, b.IncludedAddons...)
	refs = append(refs, b.OptionalAddons...)

	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if seen[ref.AddonID] {
			result.add(ValidationError{
				Kind:    ErrKindDuplicateAddon,
				AddonID: ref.AddonID,
				Message: fmt.Sprintf("Add-on %q appears more than once in the bundle", ref.AddonID),
			})
			continue
		}
		seen[ref.AddonID] = true
		ids = append(ids, ref.AddonID)
	}

	for _, ref := range refs {
		if ref.Pricing < 0 {
			result.add(ValidationError{
				Kind:    ErrKindInvalidPricing,
				AddonID: ref.AddonID,
				Field:   "pricing",
				Message: fmt.Sprintf("Add-on %q has a negative price", ref.Name),
			})
		}
		if ref.MaxQuantity != nil && *ref.MaxQuantity <= 0 {
			result.add(ValidationError{
				Kind:    ErrKindInvalidQuantity,
				AddonID: ref.AddonID,
				Field:   "maxQuantity",
				Message: fmt.Sprintf("Add-on %q has a non-positive max quantity", ref.Name),
			})
		}
	}

	found, lookupErr := v.resolveCatalog(ctx, ids)
	if lookupErr != nil {
		v.Logger.Error("BUNDLE", fmt.Sprintf("ValidateBundle: catalog lookup failed for experience %s: %v", b.ExperienceID, lookupErr))
		result.add(ValidationError{
			Kind:    ErrKindCatalogLookup,
			Message: fmt.Sprintf("Failed to verify add-ons against the catalog: %v", lookupErr),
		})
		return result
	}

	for _, ref := range refs {
		addon, ok := found[ref.AddonID]
		if !ok {
			result.add(ValidationError{
				Kind:    ErrKindAddonNotFound,
				AddonID: ref.AddonID,
				Message: fmt.Sprintf("Add-on %q does not exist in the catalog", ref.AddonID),
			})
			continue
		}
		if !addon.IsAvailable {
			result.add(ValidationError{
				Kind:    ErrKindAddonUnavailable,
				AddonID: ref.AddonID,
				Message: fmt.Sprintf("Add-on %q is currently unavailable", addon.Name),
			})
		}
	}

	return result
}

// resolveCatalog looks up the given IDs in chunks of catalogChunkSize and
// indexes the hits by ID.
func (v *Validator) resolveCatalog(ctx context.Context, ids []string) (map[string]*models.Addon, error) {
	found := make(map[string]*models.Addon, len(ids))
	for start := 0; start < len(ids); start += catalogChunkSize {
		end := start + catalogChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		addons, err := v.Catalog.FindByIDs(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, addon := range addons {
			found[addon.ID] = addon
		}
	}
	return found, nil
}
