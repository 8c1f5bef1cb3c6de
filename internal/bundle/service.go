package bundle

import (
	"context"
	"fmt"

	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

type DBLayer interface {
	UpsertBundle(ctx context.Context, b *models.AddonBundle) error
	GetBundleByExperience(ctx context.Context, experienceID string) (*models.AddonBundle, error)
	DeleteBundle(ctx context.Context, experienceID string) error
	ReferencesAddon(ctx context.Context, addonID string) (bool, error)
}

type KafkaPublisher interface {
	PublishBundleReplaced(b models.AddonBundle) error
	PublishBundleCleared(experienceID string) error
}

// BundleService owns the experience bundle lifecycle: validated replacement,
// retrieval, clearing, and price/commission quotes.
type BundleService struct {
	DB        DBLayer
	Kafka     KafkaPublisher
	Validator *Validator
	Pricing   *PricingCalculator
	Logger    *logger.Logger
}

func NewBundleService(db DBLayer, kafka KafkaPublisher, validator *Validator, log *logger.Logger) *BundleService {
	return &BundleService{
		DB:        db,
		Kafka:     kafka,
		Validator: validator,
		Pricing:   NewPricingCalculator(),
		Logger:    log,
	}
}

// ReplaceBundle validates the proposed bundle and, when valid, persists it as
// the experience's bundle. The validation result is returned either way so
// callers can surface every finding in one round trip.
func (s *BundleService) ReplaceBundle(ctx context.Context, b *models.AddonBundle) (ValidationResult, error) {
	s.Logger.LogBundle("REPLACE", b.ExperienceID, fmt.Sprintf("validating %d add-ons", b.TotalCount()))

	result := s.Validator.ValidateBundle(ctx, b)
	if !result.IsValid {
		s.Logger.LogBundle("REPLACE", b.ExperienceID, fmt.Sprintf("rejected with %d validation errors", len(result.Errors)))
		return result, nil
	}

	if err := s.DB.UpsertBundle(ctx, b); err != nil {
		s.Logger.Error("BUNDLE", fmt.Sprintf("ReplaceBundle: failed to persist bundle for %s: %v", b.ExperienceID, err))
		return result, err
	}

	if err := s.Kafka.PublishBundleReplaced(*b); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ReplaceBundle: publish failed for %s: %v", b.ExperienceID, err))
	}

	s.Logger.LogBundle("REPLACE", b.ExperienceID, "bundle persisted")
	return result, nil
}

// GetBundle returns the experience's bundle. An experience with no configured
// add-ons yields an empty bundle, not an error.
func (s *BundleService) GetBundle(ctx context.Context, experienceID string) (*models.AddonBundle, error) {
	if experienceID == "" {
		return nil, &models.AddonValidationError{Field: "experienceId", Message: "Experience ID cannot be empty"}
	}
	return s.DB.GetBundleByExperience(ctx, experienceID)
}

// ClearBundle removes every add-on reference for the experience.
func (s *BundleService) ClearBundle(ctx context.Context, experienceID string) error {
	if err := s.DB.DeleteBundle(ctx, experienceID); err != nil {
		s.Logger.Error("BUNDLE", fmt.Sprintf("ClearBundle: failed for %s: %v", experienceID, err))
		return err
	}

	if err := s.Kafka.PublishBundleCleared(experienceID); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ClearBundle: publish failed for %s: %v", experienceID, err))
	}

	s.Logger.LogBundle("CLEAR", experienceID, "bundle cleared")
	return nil
}

// Validate runs a dry-run validation of a proposed bundle without persisting.
func (s *BundleService) Validate(ctx context.Context, b *models.AddonBundle) ValidationResult {
	return s.Validator.ValidateBundle(ctx, b)
}

// Quote prices the stored bundle under the given options.
func (s *BundleService) Quote(ctx context.Context, experienceID string, opts PriceOptions) (float64, error) {
	b, err := s.GetBundle(ctx, experienceID)
	if err != nil {
		return 0, err
	}
	return s.Pricing.CalculateBundlePrice(b, opts)
}

// CommissionSplit returns the grand commission total and the per-partner
// breakdown for the stored bundle.
func (s *BundleService) CommissionSplit(ctx context.Context, experienceID string) (float64, map[string]float64, error) {
	b, err := s.GetBundle(ctx, experienceID)
	if err != nil {
		return 0, nil, err
	}
	return s.Pricing.CalculateTotalCommission(b), s.Pricing.CalculateCommissionByPartner(b), nil
}
