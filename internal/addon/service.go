package addon

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

var (
	ErrAddonNotFound = errors.New("add-on not found")
	// ErrAddonInUse is returned when deleting an add-on still referenced by a bundle.
	ErrAddonInUse = errors.New("add-on is referenced by an experience bundle")
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	PartnerID string
	Category  string
	Available *bool
}

type DBLayer interface {
	CreateAddon(ctx context.Context, a *models.Addon) error
	GetAddonByID(ctx context.Context, id string) (*models.Addon, error)
	UpdateAddon(ctx context.Context, a *models.Addon) error
	DeleteAddon(ctx context.Context, id string) error
	ListAddons(ctx context.Context, filter ListFilter) ([]*models.Addon, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error)
}

// Cache is a read-through cache over single-add-on lookups. A miss is
// (nil, nil), not an error.
type Cache interface {
	GetAddon(ctx context.Context, id string) (*models.Addon, error)
	SetAddon(ctx context.Context, a *models.Addon) error
	InvalidateAddon(ctx context.Context, id string) error
}

// BundleRefs answers whether any experience bundle still references an add-on.
type BundleRefs interface {
	ReferencesAddon(ctx context.Context, addonID string) (bool, error)
}

type KafkaPublisher interface {
	PublishAddonCreated(a models.Addon) error
	PublishAddonUpdated(a models.Addon) error
	PublishAddonDeleted(id string) error
}

// CatalogService owns the add-on catalog: partner CRUD, media and tag
// management, availability flips, and the batched lookups the bundle
// validator resolves references through.
type CatalogService struct {
	DB         DBLayer
	Cache      Cache
	BundleRefs BundleRefs
	Kafka      KafkaPublisher
	Logger     *logger.Logger
}

func NewCatalogService(db DBLayer, cache Cache, refs BundleRefs, kafka KafkaPublisher, log *logger.Logger) *CatalogService {
	return &CatalogService{
		DB:         db,
		Cache:      cache,
		BundleRefs: refs,
		Kafka:      kafka,
		Logger:     log,
	}
}

func (s *CatalogService) CreateAddon(ctx context.Context, params models.AddonParams) (*models.Addon, error) {
	if params.ID == "" {
		params.ID = uuid.New().String()
	}

	a, err := models.NewAddon(params)
	if err != nil {
		return nil, err
	}

	if err := s.DB.CreateAddon(ctx, a); err != nil {
		s.Logger.Error("CATALOG", fmt.Sprintf("CreateAddon: failed to persist %s: %v", a.ID, err))
		return nil, err
	}

	if err := s.Kafka.PublishAddonCreated(*a); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("CreateAddon: publish failed for %s: %v", a.ID, err))
	}

	s.Logger.LogCatalog("CREATE", a.ID, fmt.Sprintf("created %q for partner %s", a.Name, a.PartnerID))
	return a, nil
}

// GetAddon reads through the cache; on a miss the catalog row is loaded and
// cached for subsequent lookups.
func (s *CatalogService) GetAddon(ctx context.Context, id string) (*models.Addon, error) {
	if cached, err := s.Cache.GetAddon(ctx, id); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("GetAddon: cache read failed for %s: %v", id, err))
	} else if cached != nil {
		return cached, nil
	}

	a, err := s.DB.GetAddonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAddonNotFound
	}

	if err := s.Cache.SetAddon(ctx, a); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("GetAddon: cache write failed for %s: %v", id, err))
	}
	return a, nil
}

func (s *CatalogService) ListAddons(ctx context.Context, filter ListFilter) ([]*models.Addon, error) {
	return s.DB.ListAddons(ctx, filter)
}

// FindByIDs resolves a batch of catalog IDs, serving what it can from the
// cache and loading the rest in one query. Missing IDs are absent from the
// result; the bundle validator relies on that.
func (s *CatalogService) FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error) {
	found := make([]*models.Addon, 0, len(ids))
	misses := make([]string, 0, len(ids))

	for _, id := range ids {
		cached, err := s.Cache.GetAddon(ctx, id)
		if err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("FindByIDs: cache read failed for %s: %v", id, err))
			misses = append(misses, id)
			continue
		}
		if cached == nil {
			misses = append(misses, id)
			continue
		}
		found = append(found, cached)
	}

	if len(misses) == 0 {
		return found, nil
	}

	loaded, err := s.DB.FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, a := range loaded {
		if err := s.Cache.SetAddon(ctx, a); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("FindByIDs: cache write failed for %s: %v", a.ID, err))
		}
	}

	return append(found, loaded...), nil
}

// UpdateDetails applies name/description/category changes via the entity's
// validating mutators.
func (s *CatalogService) UpdateDetails(ctx context.Context, id, name, description, category string) (*models.Addon, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		if err := a.UpdateName(name); err != nil {
			return nil, err
		}
	}
	if description != "" {
		if err := a.UpdateDescription(description); err != nil {
			return nil, err
		}
	}
	if category != "" {
		a.UpdateCategory(category)
	}

	return a, s.saveAndBroadcast(ctx, a, "UPDATE")
}

func (s *CatalogService) UpdatePricing(ctx context.Context, id string, pricing models.AddonPricing) (*models.Addon, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.UpdatePricing(pricing); err != nil {
		return nil, err
	}
	return a, s.saveAndBroadcast(ctx, a, "PRICING")
}

func (s *CatalogService) SetAvailability(ctx context.Context, id string, available bool) (*models.Addon, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	a.SetAvailability(available)
	return a, s.saveAndBroadcast(ctx, a, "AVAILABILITY")
}

func (s *CatalogService) AddMedia(ctx context.Context, id string, media models.AddonMedia) (*models.Addon, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.AddMedia(media); err != nil {
		return nil, err
	}
	return a, s.saveAndBroadcast(ctx, a, "MEDIA")
}

// AddTag reports whether the tag was new; duplicate adds are a no-op that
// still succeeds.
func (s *CatalogService) AddTag(ctx context.Context, id, tag string) (bool, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return false, err
	}
	if !a.AddTag(tag) {
		return false, nil
	}
	return true, s.saveAndBroadcast(ctx, a, "TAG")
}

func (s *CatalogService) RemoveTag(ctx context.Context, id, tag string) (bool, error) {
	a, err := s.GetAddon(ctx, id)
	if err != nil {
		return false, err
	}
	if !a.RemoveTag(tag) {
		return false, nil
	}
	return true, s.saveAndBroadcast(ctx, a, "TAG")
}

// DeleteAddon removes a catalog entry. Deletion is refused while any
// experience bundle still references the add-on.
func (s *CatalogService) DeleteAddon(ctx context.Context, id string) error {
	referenced, err := s.BundleRefs.ReferencesAddon(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check bundle references: %w", err)
	}
	if referenced {
		return ErrAddonInUse
	}

	if err := s.DB.DeleteAddon(ctx, id); err != nil {
		return err
	}

	if err := s.Cache.InvalidateAddon(ctx, id); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("DeleteAddon: invalidation failed for %s: %v", id, err))
	}
	if err := s.Kafka.PublishAddonDeleted(id); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("DeleteAddon: publish failed for %s: %v", id, err))
	}

	s.Logger.LogCatalog("DELETE", id, "add-on removed from catalog")
	return nil
}

func (s *CatalogService) saveAndBroadcast(ctx context.Context, a *models.Addon, action string) error {
	if err := s.DB.UpdateAddon(ctx, a); err != nil {
		s.Logger.Error("CATALOG", fmt.Sprintf("%s: failed to persist %s: %v", action, a.ID, err))
		return err
	}

	if err := s.Cache.InvalidateAddon(ctx, a.ID); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("%s: invalidation failed for %s: %v", action, a.ID, err))
	}
	if err := s.Kafka.PublishAddonUpdated(*a); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("%s: publish failed for %s: %v", action, a.ID, err))
	}

	s.Logger.LogCatalog(action, a.ID, "add-on updated")
	return nil
}
