package bundle

import (
	"fmt"

	"ms-addons/internal/models"
)

// PriceOptions controls which add-ons a quote includes. The base experience
// price is the caller's concern and is never added here.
type PriceOptions struct {
	// IncludeOptional adds every optional add-on to the quote.
	IncludeOptional bool
	// SelectedOptionalIDs adds only the listed optional add-ons. Ignored
	// when IncludeOptional is set.
	SelectedOptionalIDs []string
	// Quantities multiplies individual add-ons. Missing entries default to 1;
	// values must be >=1 and within the reference's max quantity when set.
	Quantities map[string]int
}

// PricingCalculator derives totals and partner commission splits from bundle
// contents. All arithmetic is plain float sums; currency rounding happens at
// presentation time.
type PricingCalculator struct{}

func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// CalculateBundlePrice sums the included add-on prices plus whichever
// optional add-ons the options select.
func (c *PricingCalculator) CalculateBundlePrice(b *models.AddonBundle, opts PriceOptions) (float64, error) {
	var total float64

	for _, ref := range b.IncludedAddons {
		qty, err := quantityFor(ref, opts.Quantities)
		if err != nil {
			return 0, err
		}
		total += ref.Pricing * float64(qty)
	}

	selected := make(map[string]bool, len(opts.SelectedOptionalIDs))
	for _, id := range opts.SelectedOptionalIDs {
		selected[id] = true
	}

	for _, ref := range b.OptionalAddons {
		if !opts.IncludeOptional && !selected[ref.AddonID] {
			continue
		}
		qty, err := quantityFor(ref, opts.Quantities)
		if err != nil {
			return 0, err
		}
		total += ref.Pricing * float64(qty)
	}

	return total, nil
}

func quantityFor(ref models.AddonReference, quantities map[string]int) (int, error) {
	qty, ok := quantities[ref.AddonID]
	if !ok {
		return 1, nil
	}
	if qty < 1 {
		return 0, fmt.Errorf("quantity for add-on %q must be at least 1", ref.Name)
	}
	if ref.MaxQuantity != nil && qty > *ref.MaxQuantity {
		return 0, fmt.Errorf("quantity %d for add-on %q exceeds the maximum of %d", qty, ref.Name, *ref.MaxQuantity)
	}
	return qty, nil
}

// CalculateTotalCommission sums commission across every reference in the
// bundle, including commission not attributed to any partner.
func (c *PricingCalculator) CalculateTotalCommission(b *models.AddonBundle) float64 {
	var total float64
	for _, ref := range b.IncludedAddons {
		total += ref.Commission()
	}
	for _, ref := range b.OptionalAddons {
		total += ref.Commission()
	}
	return total
}

// CalculateCommissionByPartner aggregates commission by partner ID.
// References without a partner contribute to the grand total only and are
// excluded from the map.
func (c *PricingCalculator) CalculateCommissionByPartner(b *models.AddonBundle) map[string]float64 {
	split := make(map[string]float64)
	for _, ref := range b.IncludedAddons {
		if ref.PartnerID != "" {
			split[ref.PartnerID] += ref.Commission()
		}
	}
	for _, ref := range b.OptionalAddons {
		if ref.PartnerID != "" {
			split[ref.PartnerID] += ref.Commission()
		}
	}
	return split
}
