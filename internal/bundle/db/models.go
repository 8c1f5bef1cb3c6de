package db

import (
	"time"

	"github.com/uptrace/bun"

	"ms-addons/internal/models"
)

// BundleItemRecord is one add-on reference inside an experience's bundle.
// A bundle is the set of rows sharing an experience_id; zero rows is the
// valid "no add-ons configured" state.
type BundleItemRecord struct {
	bun.BaseModel `bun:"table:addon_bundle_items"`

	ExperienceID   string    `bun:"experience_id,pk"`
	AddonID        string    `bun:"addon_id,pk"`
	PartnerID      string    `bun:"partner_id,nullzero"`
	Name           string    `bun:"name,notnull"`
	Description    string    `bun:"description"`
	Pricing        float64   `bun:"pricing,notnull"`
	IsRequired     bool      `bun:"is_required,notnull"`
	CommissionRate float64   `bun:"commission_rate,notnull"`
	MaxQuantity    *int      `bun:"max_quantity,nullzero"`
	Category       string    `bun:"category,nullzero"`
	MediaURL       string    `bun:"media_url,nullzero"`
	SortOrder      int       `bun:"sort_order,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero"`
}

func recordFromReference(experienceID string, ref models.AddonReference, sortOrder int, now time.Time) BundleItemRecord {
	return BundleItemRecord{
		ExperienceID:   experienceID,
		AddonID:        ref.AddonID,
		PartnerID:      ref.PartnerID,
		Name:           ref.Name,
		Description:    ref.Description,
		Pricing:        ref.Pricing,
		IsRequired:     ref.IsRequired,
		CommissionRate: ref.CommissionRate,
		MaxQuantity:    ref.MaxQuantity,
		Category:       ref.Category,
		MediaURL:       ref.MediaURL,
		SortOrder:      sortOrder,
		UpdatedAt:      now,
	}
}

func (r BundleItemRecord) toReference() models.AddonReference {
	return models.AddonReference{
		AddonID:        r.AddonID,
		PartnerID:      r.PartnerID,
		Name:           r.Name,
		Description:    r.Description,
		Pricing:        r.Pricing,
		IsRequired:     r.IsRequired,
		CommissionRate: r.CommissionRate,
		MaxQuantity:    r.MaxQuantity,
		Category:       r.Category,
		MediaURL:       r.MediaURL,
	}
}
