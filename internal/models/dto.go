package models

// Wire DTOs for the HTTP API.

type AddonRequest struct {
	ID           string       `json:"id,omitempty"`
	ProductID    string       `json:"productId,omitempty"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Type         AddonType    `json:"type,omitempty"`
	Category     string       `json:"category,omitempty"`
	Pricing      AddonPricing `json:"pricing"`
	Media        []AddonMedia `json:"media,omitempty"`
	MainImageURL string       `json:"mainImageUrl,omitempty"`
	IsAvailable  *bool        `json:"isAvailable,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	PartnerID    string       `json:"partnerId,omitempty"`
}

type AddonResponse struct {
	ID           string        `json:"id"`
	ProductID    string        `json:"productId"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Type         AddonType     `json:"type"`
	Category     AddonCategory `json:"category"`
	Pricing      AddonPricing  `json:"pricing"`
	Media        []AddonMedia  `json:"media"`
	MainImageURL string        `json:"mainImageUrl,omitempty"`
	IsAvailable  bool          `json:"isAvailable"`
	Tags         []string      `json:"tags"`
	PartnerID    string        `json:"partnerId,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

func NewAddonResponse(a *Addon) AddonResponse {
	return AddonResponse{
		ID:           a.ID,
		ProductID:    a.ProductID,
		Name:         a.Name,
		Description:  a.Description,
		Type:         a.Type,
		Category:     a.Category,
		Pricing:      a.Pricing,
		Media:        a.Media,
		MainImageURL: a.MainImageURL(),
		IsAvailable:  a.IsAvailable,
		Tags:         a.Tags,
		PartnerID:    a.PartnerID,
		CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		UpdatedAt:    a.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

type BundleRequest struct {
	IncludedAddOns []AddonReference `json:"includedAddOns"`
	OptionalAddOns []AddonReference `json:"optionalAddOns"`
}

type PriceQuoteRequest struct {
	IncludeOptional     bool           `json:"includeOptional,omitempty"`
	SelectedOptionalIDs []string       `json:"selectedOptionalIds,omitempty"`
	Quantities          map[string]int `json:"quantities,omitempty"`
}

type PriceQuoteResponse struct {
	ExperienceID string  `json:"experienceId"`
	AddonsTotal  float64 `json:"addonsTotal"`
}

type CommissionResponse struct {
	ExperienceID    string             `json:"experienceId"`
	TotalCommission float64            `json:"totalCommission"`
	ByPartner       map[string]float64 `json:"byPartner"`
}
