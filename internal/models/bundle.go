package models

import "strings"

// AddonBundle associates a yacht experience with its required ("included")
// and optional add-ons. Identity is the experience ID; empty add-on lists are
// the valid "no add-ons configured" state.
type AddonBundle struct {
	ExperienceID   string           `json:"experienceId"`
	IncludedAddons []AddonReference `json:"includedAddOns"`
	OptionalAddons []AddonReference `json:"optionalAddOns"`
}

// BundlePricing holds the four aggregate totals derived from a bundle's
// contents. It is recomputed on every access, never cached.
type BundlePricing struct {
	RequiredAddonsTotal     float64 `json:"requiredAddonsTotal"`
	OptionalAddonsTotal     float64 `json:"optionalAddonsTotal"`
	RequiredCommissionTotal float64 `json:"requiredCommissionTotal"`
	OptionalCommissionTotal float64 `json:"optionalCommissionTotal"`
}

// NewAddonBundle validates every reference, forces isRequired to match the
// containing list and rejects add-on IDs duplicated anywhere in the bundle.
func NewAddonBundle(experienceID string, included, optional []AddonReference) (*AddonBundle, error) {
	if strings.TrimSpace(experienceID) == "" {
		return nil, validationError("experienceId", "Experience ID cannot be empty")
	}

	b := &AddonBundle{
		ExperienceID:   experienceID,
		IncludedAddons: make([]AddonReference, 0, len(included)),
		OptionalAddons: make([]AddonReference, 0, len(optional)),
	}

	seen := make(map[string]bool, len(included)+len(optional))
	for _, ref := range included {
		ref.IsRequired = true
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		if seen[ref.AddonID] {
			return nil, validationError("addOnId", "Duplicate add-on %q in bundle", ref.AddonID)
		}
		seen[ref.AddonID] = true
		b.IncludedAddons = append(b.IncludedAddons, ref)
	}
	for _, ref := range optional {
		ref.IsRequired = false
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		if seen[ref.AddonID] {
			return nil, validationError("addOnId", "Duplicate add-on %q in bundle", ref.AddonID)
		}
		seen[ref.AddonID] = true
		b.OptionalAddons = append(b.OptionalAddons, ref)
	}

	return b, nil
}

// EmptyBundle returns the "no add-ons configured" bundle for an experience.
func EmptyBundle(experienceID string) *AddonBundle {
	return &AddonBundle{
		ExperienceID:   experienceID,
		IncludedAddons: []AddonReference{},
		OptionalAddons: []AddonReference{},
	}
}

// AddIncludedAddon appends a required reference. Returns false without
// mutation when the add-on already exists anywhere in the bundle.
func (b *AddonBundle) AddIncludedAddon(ref AddonReference) (bool, error) {
	if b.HasAddon(ref.AddonID) {
		return false, nil
	}
	ref.IsRequired = true
	if err := ref.Validate(); err != nil {
		return false, err
	}
	b.IncludedAddons = append(b.IncludedAddons, ref)
	return true, nil
}

// AddOptionalAddon appends an optional reference. Returns false without
// mutation when the add-on already exists anywhere in the bundle.
func (b *AddonBundle) AddOptionalAddon(ref AddonReference) (bool, error) {
	if b.HasAddon(ref.AddonID) {
		return false, nil
	}
	ref.IsRequired = false
	if err := ref.Validate(); err != nil {
		return false, err
	}
	b.OptionalAddons = append(b.OptionalAddons, ref)
	return true, nil
}

// RemoveAddon removes the reference with the given ID from whichever list
// holds it. Returns false when the ID is absent.
func (b *AddonBundle) RemoveAddon(addonID string) bool {
	for i, ref := range b.IncludedAddons {
		if ref.AddonID == addonID {
			b.IncludedAddons = append(b.IncludedAddons[:i], b.IncludedAddons[i+1:]...)
			return true
		}
	}
	for i, ref := range b.OptionalAddons {
		if ref.AddonID == addonID {
			b.OptionalAddons = append(b.OptionalAddons[:i], b.OptionalAddons[i+1:]...)
			return true
		}
	}
	return false
}

// MoveToOptional relocates an included reference to the optional list,
// flipping its isRequired flag. Returns false when the ID is not included.
func (b *AddonBundle) MoveToOptional(addonID string) bool {
	for i, ref := range b.IncludedAddons {
		if ref.AddonID == addonID {
			b.IncludedAddons = append(b.IncludedAddons[:i], b.IncludedAddons[i+1:]...)
			ref.IsRequired = false
			b.OptionalAddons = append(b.OptionalAddons, ref)
			return true
		}
	}
	return false
}

// MoveToIncluded relocates an optional reference to the included list,
// flipping its isRequired flag. Returns false when the ID is not optional.
func (b *AddonBundle) MoveToIncluded(addonID string) bool {
	for i, ref := range b.OptionalAddons {
		if ref.AddonID == addonID {
			b.OptionalAddons = append(b.OptionalAddons[:i], b.OptionalAddons[i+1:]...)
			ref.IsRequired = true
			b.IncludedAddons = append(b.IncludedAddons, ref)
			return true
		}
	}
	return false
}

// UpdateAddon merges patch fields into the matching reference, preserving the
// add-on ID and the isRequired flag of the list it lives in. Returns false
// when the ID is absent.
func (b *AddonBundle) UpdateAddon(addonID string, patch AddonReferencePatch) (bool, error) {
	for i, ref := range b.IncludedAddons {
		if ref.AddonID == addonID {
			updated := ref.applyPatch(patch)
			updated.AddonID = ref.AddonID
			updated.IsRequired = true
			if err := updated.Validate(); err != nil {
				return false, err
			}
			b.IncludedAddons[i] = updated
			return true, nil
		}
	}
	for i, ref := range b.OptionalAddons {
		if ref.AddonID == addonID {
			updated := ref.applyPatch(patch)
			updated.AddonID = ref.AddonID
			updated.IsRequired = false
			if err := updated.Validate(); err != nil {
				return false, err
			}
			b.OptionalAddons[i] = updated
			return true, nil
		}
	}
	return false, nil
}

func (b *AddonBundle) HasAddon(addonID string) bool {
	return b.IsIncluded(addonID) || b.IsOptional(addonID)
}

func (b *AddonBundle) GetAddon(addonID string) (AddonReference, bool) {
	for _, ref := range b.IncludedAddons {
		if ref.AddonID == addonID {
			return ref, true
		}
	}
	for _, ref := range b.OptionalAddons {
		if ref.AddonID == addonID {
			return ref, true
		}
	}
	return AddonReference{}, false
}

func (b *AddonBundle) IsIncluded(addonID string) bool {
	for _, ref := range b.IncludedAddons {
		if ref.AddonID == addonID {
			return true
		}
	}
	return false
}

func (b *AddonBundle) IsOptional(addonID string) bool {
	for _, ref := range b.OptionalAddons {
		if ref.AddonID == addonID {
			return true
		}
	}
	return false
}

func (b *AddonBundle) TotalCount() int {
	return len(b.IncludedAddons) + len(b.OptionalAddons)
}

func (b *AddonBundle) IsEmpty() bool {
	return b.TotalCount() == 0
}

// AllAddonIDs returns every add-on ID in the bundle, included first.
func (b *AddonBundle) AllAddonIDs() []string {
	ids := make([]string, 0, b.TotalCount())
	for _, ref := range b.IncludedAddons {
		ids = append(ids, ref.AddonID)
	}
	for _, ref := range b.OptionalAddons {
		ids = append(ids, ref.AddonID)
	}
	return ids
}

// Pricing recomputes the aggregate totals from the current contents.
func (b *AddonBundle) Pricing() BundlePricing {
	var p BundlePricing
	for _, ref := range b.IncludedAddons {
		p.RequiredAddonsTotal += ref.Pricing
		p.RequiredCommissionTotal += ref.Commission()
	}
	for _, ref := range b.OptionalAddons {
		p.OptionalAddonsTotal += ref.Pricing
		p.OptionalCommissionTotal += ref.Commission()
	}
	return p
}
