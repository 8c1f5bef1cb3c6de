package models

import "strings"

type AddonCategory string

const (
	CategoryWaterSports   AddonCategory = "water_sports"
	CategoryDining        AddonCategory = "dining"
	CategoryCatering      AddonCategory = "catering"
	CategoryTours         AddonCategory = "tours"
	CategoryPhotography   AddonCategory = "photography"
	CategoryEquipment     AddonCategory = "equipment"
	CategoryEntertainment AddonCategory = "entertainment"
	CategoryWellness      AddonCategory = "wellness"
	CategoryOther         AddonCategory = "other"
)

// categoryAliases maps the free-form category strings seen in partner
// submissions onto the standard category list.
var categoryAliases = map[string]AddonCategory{
	"watersports":    CategoryWaterSports,
	"water sport":    CategoryWaterSports,
	"waterskiing":    CategoryWaterSports,
	"water skiing":   CategoryWaterSports,
	"flyboard":       CategoryWaterSports,
	"flyboarding":    CategoryWaterSports,
	"diving":         CategoryWaterSports,
	"jetski":         CategoryWaterSports,
	"jet ski":        CategoryWaterSports,
	"food":           CategoryDining,
	"restaurant":     CategoryDining,
	"private dining": CategoryDining,
	"chef":           CategoryCatering,
	"tour":           CategoryTours,
	"excursion":      CategoryTours,
	"photo":          CategoryPhotography,
	"photographer":   CategoryPhotography,
	"video":          CategoryPhotography,
	"gear":           CategoryEquipment,
	"rental":         CategoryEquipment,
	"music":          CategoryEntertainment,
	"dj":             CategoryEntertainment,
	"spa":            CategoryWellness,
	"massage":        CategoryWellness,
	"yoga":           CategoryWellness,
}

var standardCategories = map[AddonCategory]bool{
	CategoryWaterSports:   true,
	CategoryDining:        true,
	CategoryCatering:      true,
	CategoryTours:         true,
	CategoryPhotography:   true,
	CategoryEquipment:     true,
	CategoryEntertainment: true,
	CategoryWellness:      true,
	CategoryOther:         true,
}

// NormalizeCategory maps an arbitrary category string onto the standard list,
// case-insensitively. Unrecognized values fall back to CategoryOther while the
// raw string is kept by the caller where needed.
func NormalizeCategory(raw string) AddonCategory {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return CategoryOther
	}

	canonical := AddonCategory(strings.ReplaceAll(strings.ReplaceAll(cleaned, " ", "_"), "-", "_"))
	if standardCategories[canonical] {
		return canonical
	}

	if mapped, ok := categoryAliases[strings.ReplaceAll(strings.ReplaceAll(cleaned, "_", " "), "-", " ")]; ok {
		return mapped
	}

	return CategoryOther
}
