package bundle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-addons/internal/bundle"
	"ms-addons/internal/models"
)

func pricingBundle(t *testing.T) *models.AddonBundle {
	t.Helper()
	maxTwo := 2
	skiing := models.AddonReference{
		AddonID:        "a1",
		PartnerID:      "p1",
		Name:           "Water Skiing",
		Pricing:        100,
		CommissionRate: 10,
		MaxQuantity:    &maxTwo,
	}
	dining := models.AddonReference{
		AddonID:        "a2",
		PartnerID:      "p2",
		Name:           "Private Dining",
		Pricing:        50,
		CommissionRate: 20,
	}
	photos := models.AddonReference{
		AddonID:        "a3",
		Name:           "Photo Package",
		Pricing:        30,
		CommissionRate: 50,
	}

	b, err := models.NewAddonBundle("exp-1",
		[]models.AddonReference{skiing},
		[]models.AddonReference{dining, photos})
	require.NoError(t, err)
	return b
}

func TestCalculateBundlePrice(t *testing.T) {
	calc := bundle.NewPricingCalculator()
	b := pricingBundle(t)

	tests := []struct {
		name string
		opts bundle.PriceOptions
		want float64
	}{
		{"required only", bundle.PriceOptions{}, 100},
		{"all optional", bundle.PriceOptions{IncludeOptional: true}, 180},
		{"selected optional", bundle.PriceOptions{SelectedOptionalIDs: []string{"a2"}}, 150},
		{"selection ignores unknown ids", bundle.PriceOptions{SelectedOptionalIDs: []string{"nope"}}, 100},
		{"include optional wins over selection", bundle.PriceOptions{IncludeOptional: true, SelectedOptionalIDs: []string{"a2"}}, 180},
		{"quantities multiply", bundle.PriceOptions{
			IncludeOptional: true,
			Quantities:      map[string]int{"a1": 2, "a3": 3},
		}, 340},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.CalculateBundlePrice(b, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateBundlePriceQuantityErrors(t *testing.T) {
	calc := bundle.NewPricingCalculator()
	b := pricingBundle(t)

	_, err := calc.CalculateBundlePrice(b, bundle.PriceOptions{Quantities: map[string]int{"a1": 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 1")

	_, err = calc.CalculateBundlePrice(b, bundle.PriceOptions{Quantities: map[string]int{"a1": 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the maximum of 2")

	// Quantities for unselected optional add-ons are never checked.
	got, err := calc.CalculateBundlePrice(b, bundle.PriceOptions{Quantities: map[string]int{"a2": -1}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)
}

func TestCalculateCommissions(t *testing.T) {
	calc := bundle.NewPricingCalculator()
	b := pricingBundle(t)

	// a1: 100*10% = 10, a2: 50*20% = 10, a3 (no partner): 30*50% = 15.
	assert.Equal(t, 35.0, calc.CalculateTotalCommission(b))

	split := calc.CalculateCommissionByPartner(b)
	assert.Equal(t, map[string]float64{"p1": 10, "p2": 10}, split)
	_, hasUnattributed := split[""]
	assert.False(t, hasUnattributed, "unattributed commission stays out of the split")
}

func TestCommissionsOnEmptyBundle(t *testing.T) {
	calc := bundle.NewPricingCalculator()
	b := models.EmptyBundle("exp-1")

	assert.Equal(t, 0.0, calc.CalculateTotalCommission(b))
	assert.Empty(t, calc.CalculateCommissionByPartner(b))

	got, err := calc.CalculateBundlePrice(b, bundle.PriceOptions{IncludeOptional: true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}
