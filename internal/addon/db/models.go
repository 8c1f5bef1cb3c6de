package db

import (
	"time"

	"github.com/uptrace/bun"

	"ms-addons/internal/models"
)

// AddonRecord is the persisted add-on row. It carries the canonical fields
// plus the legacy duplicates (availability, created_date, last_updated_date)
// older documents were written with; the legacy columns are mirrored on every
// write and consulted only as a fallback on read.
type AddonRecord struct {
	bun.BaseModel `bun:"table:addons"`

	ID             string              `bun:"id,pk"`
	ProductID      string              `bun:"product_id,notnull"`
	Name           string              `bun:"name,notnull"`
	Description    string              `bun:"description"`
	Type           string              `bun:"type,notnull"`
	Category       string              `bun:"category,notnull"`
	Pricing        float64             `bun:"pricing,notnull"`
	CommissionRate float64             `bun:"commission_rate,notnull"`
	PricingModel   string              `bun:"pricing_model,notnull"`
	MaxQuantity    *int                `bun:"max_quantity,nullzero"`
	Media          []models.AddonMedia `bun:"media,type:jsonb"`
	MainImageURL   string              `bun:"main_image_url,nullzero"`
	IsAvailable    *bool               `bun:"is_available"`
	Tags           []string            `bun:"tags,type:jsonb"`
	PartnerID      string              `bun:"partner_id,nullzero"`
	CreatedAt      time.Time           `bun:"created_at,nullzero"`
	UpdatedAt      time.Time           `bun:"updated_at,nullzero"`

	// Legacy duplicates kept for backward compatibility with old documents.
	Availability    bool      `bun:"availability"`
	CreatedDate     time.Time `bun:"created_date,nullzero"`
	LastUpdatedDate time.Time `bun:"last_updated_date,nullzero"`
}

func recordFromAddon(a *models.Addon) *AddonRecord {
	available := a.IsAvailable
	return &AddonRecord{
		ID:             a.ID,
		ProductID:      a.ProductID,
		Name:           a.Name,
		Description:    a.Description,
		Type:           string(a.Type),
		Category:       string(a.Category),
		Pricing:        a.Pricing.BasePrice,
		CommissionRate: a.Pricing.CommissionRate,
		PricingModel:   string(a.Pricing.PricingModel),
		MaxQuantity:    a.Pricing.MaxQuantity,
		Media:          a.Media,
		MainImageURL:   a.ExplicitMainImage(),
		IsAvailable:    &available,
		Tags:           a.Tags,
		PartnerID:      a.PartnerID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,

		Availability:    a.IsAvailable,
		CreatedDate:     a.CreatedAt,
		LastUpdatedDate: a.UpdatedAt,
	}
}

func (r *AddonRecord) toAddon() *models.Addon {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.CreatedDate
	}
	updatedAt := r.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.LastUpdatedDate
	}
	available := r.Availability
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}

	a := &models.Addon{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Type:        models.AddonType(r.Type),
		Category:    models.AddonCategory(r.Category),
		Pricing: models.AddonPricing{
			BasePrice:      r.Pricing,
			CommissionRate: r.CommissionRate,
			PricingModel:   models.PricingModel(r.PricingModel),
			MaxQuantity:    r.MaxQuantity,
		},
		Media:       r.Media,
		IsAvailable: available,
		Tags:        r.Tags,
		PartnerID:   r.PartnerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if a.Media == nil {
		a.Media = []models.AddonMedia{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if r.MainImageURL != "" {
		a.RestoreMainImage(r.MainImageURL)
	}
	return a
}
