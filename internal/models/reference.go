package models

import "strings"

// AddonReference is the value object a bundle stores per add-on. It carries a
// denormalized snapshot of the catalog entry so bundle pricing stays stable
// when the catalog changes.
type AddonReference struct {
	AddonID        string  `json:"addOnId"`
	PartnerID      string  `json:"partnerId,omitempty"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Pricing        float64 `json:"pricing"`
	IsRequired     bool    `json:"isRequired"`
	CommissionRate float64 `json:"commissionRate"`
	MaxQuantity    *int    `json:"maxQuantity,omitempty"`
	Category       string  `json:"category,omitempty"`
	MediaURL       string  `json:"mediaUrl,omitempty"`
}

func (r AddonReference) Validate() error {
	if strings.TrimSpace(r.AddonID) == "" {
		return validationError("addOnId", "Add-on ID cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return validationError("name", "Add-on name cannot be empty")
	}
	if r.Pricing < 0 {
		return validationError("pricing", "Pricing cannot be negative")
	}
	if r.CommissionRate < 0 || r.CommissionRate > 100 {
		return validationError("commissionRate", "Commission rate must be between 0 and 100")
	}
	if r.MaxQuantity != nil && *r.MaxQuantity <= 0 {
		return validationError("maxQuantity", "Max quantity must be greater than zero")
	}
	return nil
}

// Commission returns the commission owed for this reference at quantity one.
func (r AddonReference) Commission() float64 {
	return r.Pricing * r.CommissionRate / 100
}

// AddonReferencePatch carries partial updates for a reference inside a
// bundle. Nil fields are left untouched; AddonID and IsRequired are never
// patchable.
type AddonReferencePatch struct {
	PartnerID      *string  `json:"partnerId,omitempty"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Pricing        *float64 `json:"pricing,omitempty"`
	CommissionRate *float64 `json:"commissionRate,omitempty"`
	MaxQuantity    *int     `json:"maxQuantity,omitempty"`
	Category       *string  `json:"category,omitempty"`
	MediaURL       *string  `json:"mediaUrl,omitempty"`
}

func (r AddonReference) applyPatch(patch AddonReferencePatch) AddonReference {
	if patch.PartnerID != nil {
		r.PartnerID = *patch.PartnerID
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.Pricing != nil {
		r.Pricing = *patch.Pricing
	}
	if patch.CommissionRate != nil {
		r.CommissionRate = *patch.CommissionRate
	}
	if patch.MaxQuantity != nil {
		v := *patch.MaxQuantity
		r.MaxQuantity = &v
	}
	if patch.Category != nil {
		r.Category = *patch.Category
	}
	if patch.MediaURL != nil {
		r.MediaURL = *patch.MediaURL
	}
	return r
}
