package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type AddonType string

const (
	AddonTypeService    AddonType = "SERVICE"
	AddonTypeProduct    AddonType = "PRODUCT"
	AddonTypeExperience AddonType = "EXPERIENCE"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type PricingModel string

const (
	PricingModelFixed     PricingModel = "fixed"
	PricingModelPerPerson PricingModel = "per_person"
	PricingModelPerHour   PricingModel = "per_hour"
)

type AddonMedia struct {
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	SortOrder int       `json:"sortOrder,omitempty"`
}

type AddonPricing struct {
	BasePrice      float64      `json:"basePrice"`
	CommissionRate float64      `json:"commissionRate"`
	PricingModel   PricingModel `json:"pricingModel"`
	MaxQuantity    *int         `json:"maxQuantity,omitempty"`
}

// Addon is a sellable ancillary service or product (catering, photography,
// water sports gear) offered alongside a yacht experience. Construction and
// every mutator validate their inputs and return AddonValidationError on
// violation, so a live Addon is always in a valid state.
type Addon struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"productId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        AddonType     `json:"type"`
	Category    AddonCategory `json:"category"`
	Pricing     AddonPricing  `json:"pricing"`
	Media       []AddonMedia  `json:"media"`
	IsAvailable bool          `json:"isAvailable"`
	Tags        []string      `json:"tags"`
	PartnerID   string        `json:"partnerId,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// mainImageURL holds an explicit override; when empty the main image is
	// derived from the first image-type media entry.
	mainImageURL string
}

type AddonParams struct {
	ID           string
	ProductID    string
	Name         string
	Description  string
	Type         AddonType
	Category     string
	Pricing      AddonPricing
	Media        []AddonMedia
	MainImageURL string
	IsAvailable  *bool
	Tags         []string
	PartnerID    string
}

func NewAddon(params AddonParams) (*Addon, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, validationError("id", "Add-on ID cannot be empty")
	}
	if err := validateAddonName(params.Name); err != nil {
		return nil, err
	}
	if err := validateAddonDescription(params.Description); err != nil {
		return nil, err
	}

	addonType := params.Type
	if addonType == "" {
		addonType = AddonTypeService
	}
	if addonType != AddonTypeService && addonType != AddonTypeProduct && addonType != AddonTypeExperience {
		return nil, validationError("type", "Add-on type must be SERVICE, PRODUCT or EXPERIENCE")
	}

	pricing, err := normalizePricing(params.Pricing)
	if err != nil {
		return nil, err
	}

	productID := params.ProductID
	if productID == "" {
		productID = params.ID
	}

	available := true
	if params.IsAvailable != nil {
		available = *params.IsAvailable
	}

	now := time.Now().UTC()
	a := &Addon{
		ID:          params.ID,
		ProductID:   productID,
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Type:        addonType,
		Category:    NormalizeCategory(params.Category),
		Pricing:     pricing,
		Media:       sanitizeMedia(params.Media),
		IsAvailable: available,
		Tags:        []string{},
		PartnerID:   params.PartnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, tag := range params.Tags {
		a.AddTag(tag)
	}

	if params.MainImageURL != "" {
		if !a.SetMainImage(params.MainImageURL) {
			return nil, validationError("mainImageUrl", "main image must reference an existing image media item")
		}
	}

	return a, nil
}

// sanitizeMedia drops entries with an empty URL or an unknown media type.
func sanitizeMedia(media []AddonMedia) []AddonMedia {
	kept := make([]AddonMedia, 0, len(media))
	for _, m := range media {
		if strings.TrimSpace(m.URL) == "" {
			continue
		}
		if m.Type != MediaTypeImage && m.Type != MediaTypeVideo {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func validateAddonName(name string) error {
	trimmed := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(trimmed); n < 3 || n > 100 {
		return validationError("name", "Add-on name must be between 3 and 100 characters")
	}
	return nil
}

func validateAddonDescription(description string) error {
	if utf8.RuneCountInString(description) > 1000 {
		return validationError("description", "Add-on description cannot exceed 1000 characters")
	}
	return nil
}

func normalizePricing(pricing AddonPricing) (AddonPricing, error) {
	if pricing.BasePrice < 0 {
		return AddonPricing{}, validationError("pricing.basePrice", "Base price cannot be negative")
	}
	if pricing.CommissionRate < 0 || pricing.CommissionRate > 100 {
		return AddonPricing{}, validationError("pricing.commissionRate", "Commission rate must be between 0 and 100")
	}
	if pricing.MaxQuantity != nil && *pricing.MaxQuantity <= 0 {
		return AddonPricing{}, validationError("pricing.maxQuantity", "Max quantity must be greater than zero")
	}
	switch pricing.PricingModel {
	case "":
		pricing.PricingModel = PricingModelFixed
	case PricingModelFixed, PricingModelPerPerson, PricingModelPerHour:
	default:
		return AddonPricing{}, validationError("pricing.pricingModel", "Unknown pricing model %q", pricing.PricingModel)
	}
	return pricing, nil
}

func (a *Addon) touch() {
	a.UpdatedAt = time.Now().UTC()
}

func (a *Addon) UpdateName(name string) error {
	if err := validateAddonName(name); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(name)
	a.touch()
	return nil
}

func (a *Addon) UpdateDescription(description string) error {
	if err := validateAddonDescription(description); err != nil {
		return err
	}
	a.Description = description
	a.touch()
	return nil
}

func (a *Addon) UpdateCategory(category string) {
	a.Category = NormalizeCategory(category)
	a.touch()
}

func (a *Addon) UpdatePricing(pricing AddonPricing) error {
	normalized, err := normalizePricing(pricing)
	if err != nil {
		return err
	}
	a.Pricing = normalized
	a.touch()
	return nil
}

func (a *Addon) SetAvailability(available bool) {
	a.IsAvailable = available
	a.touch()
}

// MainImageURL returns the explicit main image when one was set, otherwise
// the URL of the first image-type media entry in insertion order.
func (a *Addon) MainImageURL() string {
	if a.mainImageURL != "" {
		return a.mainImageURL
	}
	for _, m := range a.Media {
		if m.Type == MediaTypeImage {
			return m.URL
		}
	}
	return ""
}

// SetMainImage points the main image at an existing image-type media entry.
// Returns false without mutation when the URL is absent or not an image.
func (a *Addon) SetMainImage(url string) bool {
	for _, m := range a.Media {
		if m.URL == url && m.Type == MediaTypeImage {
			a.mainImageURL = url
			a.touch()
			return true
		}
	}
	return false
}

func (a *Addon) AddMedia(media AddonMedia) error {
	if strings.TrimSpace(media.URL) == "" {
		return validationError("media.url", "Media URL cannot be empty")
	}
	if media.Type != MediaTypeImage && media.Type != MediaTypeVideo {
		return validationError("media.type", "Media type must be image or video")
	}
	a.Media = append(a.Media, media)
	a.touch()
	return nil
}

// RemoveMedia removes the media entry with the given URL. When the removed
// entry was the explicit main image the override is cleared and the main
// image falls back to derivation.
func (a *Addon) RemoveMedia(url string) bool {
	for i, m := range a.Media {
		if m.URL == url {
			a.Media = append(a.Media[:i], a.Media[i+1:]...)
			if a.mainImageURL == url {
				a.mainImageURL = ""
			}
			a.touch()
			return true
		}
	}
	return false
}

// AddTag adds a tag with case-insensitive dedup. Returns false on empty input
// or duplicate, true on success.
func (a *Addon) AddTag(tag string) bool {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return false
	}
	for _, existing := range a.Tags {
		if strings.EqualFold(existing, trimmed) {
			return false
		}
	}
	a.Tags = append(a.Tags, trimmed)
	a.touch()
	return true
}

func (a *Addon) RemoveTag(tag string) bool {
	for i, existing := range a.Tags {
		if strings.EqualFold(existing, strings.TrimSpace(tag)) {
			a.Tags = append(a.Tags[:i], a.Tags[i+1:]...)
			a.touch()
			return true
		}
	}
	return false
}

// ExplicitMainImage reports the override URL, empty when the main image is
// derived. Used by the persistence layer so derivation survives round-trips.
func (a *Addon) ExplicitMainImage() string {
	return a.mainImageURL
}

// RestoreMainImage re-applies a persisted explicit main image override.
// Unlike SetMainImage it does not bump UpdatedAt.
func (a *Addon) RestoreMainImage(url string) {
	a.mainImageURL = url
}

// CreateReference projects the add-on into an AddonReference for bundling.
func (a *Addon) CreateReference(isRequired bool) AddonReference {
	var maxQuantity *int
	if a.Pricing.MaxQuantity != nil {
		v := *a.Pricing.MaxQuantity
		maxQuantity = &v
	}
	return AddonReference{
		AddonID:        a.ID,
		PartnerID:      a.PartnerID,
		Name:           a.Name,
		Description:    a.Description,
		Pricing:        a.Pricing.BasePrice,
		IsRequired:     isRequired,
		CommissionRate: a.Pricing.CommissionRate,
		MaxQuantity:    maxQuantity,
		Category:       string(a.Category),
		MediaURL:       a.MainImageURL(),
	}
}
