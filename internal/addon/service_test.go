package addon_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-addons/internal/addon"
	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateAddon(ctx context.Context, a *models.Addon) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockDBLayer) GetAddonByID(ctx context.Context, id string) (*models.Addon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Addon), args.Error(1)
}

func (m *MockDBLayer) UpdateAddon(ctx context.Context, a *models.Addon) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteAddon(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) ListAddons(ctx context.Context, filter addon.ListFilter) ([]*models.Addon, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Addon), args.Error(1)
}

func (m *MockDBLayer) FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Addon), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAddon(ctx context.Context, id string) (*models.Addon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Addon), args.Error(1)
}

func (m *MockCache) SetAddon(ctx context.Context, a *models.Addon) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockCache) InvalidateAddon(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBundleRefs struct {
	mock.Mock
}

func (m *MockBundleRefs) ReferencesAddon(ctx context.Context, addonID string) (bool, error) {
	args := m.Called(ctx, addonID)
	return args.Bool(0), args.Error(1)
}

type MockAddonPublisher struct {
	mock.Mock
}

func (m *MockAddonPublisher) PublishAddonCreated(a models.Addon) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockAddonPublisher) PublishAddonUpdated(a models.Addon) error {
	args := m.Called(a)
	return args.Error(0)
}

func (m *MockAddonPublisher) PublishAddonDeleted(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type catalogMocks struct {
	db    *MockDBLayer
	cache *MockCache
	refs  *MockBundleRefs
	kafka *MockAddonPublisher
}

func newCatalogService() (*addon.CatalogService, catalogMocks) {
	mocks := catalogMocks{
		db:    new(MockDBLayer),
		cache: new(MockCache),
		refs:  new(MockBundleRefs),
		kafka: new(MockAddonPublisher),
	}
	svc := addon.NewCatalogService(mocks.db, mocks.cache, mocks.refs, mocks.kafka, logger.NewLogger())
	return svc, mocks
}

func testAddon(t *testing.T, id string) *models.Addon {
	t.Helper()
	a, err := models.NewAddon(models.AddonParams{
		ID:   id,
		Name: "Sunset Catamaran Catering",
		Pricing: models.AddonPricing{
			BasePrice:      250,
			CommissionRate: 15,
		},
		PartnerID: "partner-gourmet",
	})
	require.NoError(t, err)
	return a
}

func TestCreateAddonGeneratesID(t *testing.T) {
	svc, mocks := newCatalogService()

	mocks.db.On("CreateAddon", mock.Anything, mock.MatchedBy(func(a *models.Addon) bool {
		return a.ID != "" && a.Name == "Sunset Catamaran Catering"
	})).Return(nil)
	mocks.kafka.On("PublishAddonCreated", mock.Anything).Return(nil)

	created, err := svc.CreateAddon(context.Background(), models.AddonParams{
		Name:    "Sunset Catamaran Catering",
		Pricing: models.AddonPricing{BasePrice: 250, CommissionRate: 15},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	mocks.db.AssertExpectations(t)
	mocks.kafka.AssertExpectations(t)
}

func TestCreateAddonInvalidParamsNeverHitDB(t *testing.T) {
	svc, mocks := newCatalogService()

	_, err := svc.CreateAddon(context.Background(), models.AddonParams{
		Name:    "ab",
		Pricing: models.AddonPricing{BasePrice: 250},
	})

	require.Error(t, err)
	var validationErr *models.AddonValidationError
	assert.ErrorAs(t, err, &validationErr)
	mocks.db.AssertNotCalled(t, "CreateAddon", mock.Anything, mock.Anything)
}

func TestGetAddonCacheHit(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(a, nil)

	got, err := svc.GetAddon(context.Background(), "addon-1")

	require.NoError(t, err)
	assert.Equal(t, a, got)
	mocks.db.AssertNotCalled(t, "GetAddonByID", mock.Anything, mock.Anything)
}

func TestGetAddonCacheMissLoadsAndCaches(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(nil, nil)
	mocks.db.On("GetAddonByID", mock.Anything, "addon-1").Return(a, nil)
	mocks.cache.On("SetAddon", mock.Anything, a).Return(nil)

	got, err := svc.GetAddon(context.Background(), "addon-1")

	require.NoError(t, err)
	assert.Equal(t, a, got)
	mocks.cache.AssertExpectations(t)
}

func TestGetAddonCacheFailureFallsThrough(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(nil, errors.New("redis down"))
	mocks.db.On("GetAddonByID", mock.Anything, "addon-1").Return(a, nil)
	mocks.cache.On("SetAddon", mock.Anything, a).Return(errors.New("redis down"))

	got, err := svc.GetAddon(context.Background(), "addon-1")

	require.NoError(t, err, "cache failures never fail a read")
	assert.Equal(t, a, got)
}

func TestGetAddonNotFound(t *testing.T) {
	svc, mocks := newCatalogService()

	mocks.cache.On("GetAddon", mock.Anything, "missing").Return(nil, nil)
	mocks.db.On("GetAddonByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetAddon(context.Background(), "missing")

	assert.ErrorIs(t, err, addon.ErrAddonNotFound)
}

func TestFindByIDsMixesCacheHitsAndDBLoads(t *testing.T) {
	svc, mocks := newCatalogService()
	cached := testAddon(t, "addon-1")
	loaded := testAddon(t, "addon-2")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(cached, nil)
	mocks.cache.On("GetAddon", mock.Anything, "addon-2").Return(nil, nil)
	mocks.cache.On("GetAddon", mock.Anything, "ghost").Return(nil, nil)
	mocks.db.On("FindByIDs", mock.Anything, []string{"addon-2", "ghost"}).
		Return([]*models.Addon{loaded}, nil)
	mocks.cache.On("SetAddon", mock.Anything, loaded).Return(nil)

	found, err := svc.FindByIDs(context.Background(), []string{"addon-1", "addon-2", "ghost"})

	require.NoError(t, err)
	require.Len(t, found, 2, "missing IDs stay absent")
	assert.Equal(t, "addon-1", found[0].ID)
	assert.Equal(t, "addon-2", found[1].ID)
	mocks.db.AssertExpectations(t)
	mocks.cache.AssertExpectations(t)
}

func TestFindByIDsAllCached(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(a, nil)

	found, err := svc.FindByIDs(context.Background(), []string{"addon-1"})

	require.NoError(t, err)
	require.Len(t, found, 1)
	mocks.db.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestUpdateDetailsInvalidNameNotPersisted(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(a, nil)

	_, err := svc.UpdateDetails(context.Background(), "addon-1", "x", "", "")

	require.Error(t, err)
	mocks.db.AssertNotCalled(t, "UpdateAddon", mock.Anything, mock.Anything)
}

func TestUpdatePricingPersistsAndInvalidates(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(a, nil)
	mocks.db.On("UpdateAddon", mock.Anything, a).Return(nil)
	mocks.cache.On("InvalidateAddon", mock.Anything, "addon-1").Return(nil)
	mocks.kafka.On("PublishAddonUpdated", mock.Anything).Return(nil)

	updated, err := svc.UpdatePricing(context.Background(), "addon-1", models.AddonPricing{
		BasePrice:      300,
		CommissionRate: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.Pricing.BasePrice)
	mocks.db.AssertExpectations(t)
	mocks.cache.AssertExpectations(t)
}

func TestAddTagDuplicateSkipsPersistence(t *testing.T) {
	svc, mocks := newCatalogService()
	a := testAddon(t, "addon-1")
	require.True(t, a.AddTag("luxury"))

	mocks.cache.On("GetAddon", mock.Anything, "addon-1").Return(a, nil)

	added, err := svc.AddTag(context.Background(), "addon-1", "LUXURY")

	require.NoError(t, err)
	assert.False(t, added)
	mocks.db.AssertNotCalled(t, "UpdateAddon", mock.Anything, mock.Anything)
}

func TestDeleteAddonRefusedWhileReferenced(t *testing.T) {
	svc, mocks := newCatalogService()

	mocks.refs.On("ReferencesAddon", mock.Anything, "addon-1").Return(true, nil)

	err := svc.DeleteAddon(context.Background(), "addon-1")

	assert.ErrorIs(t, err, addon.ErrAddonInUse)
	mocks.db.AssertNotCalled(t, "DeleteAddon", mock.Anything, mock.Anything)
}

func TestDeleteAddon(t *testing.T) {
	svc, mocks := newCatalogService()

	mocks.refs.On("ReferencesAddon", mock.Anything, "addon-1").Return(false, nil)
	mocks.db.On("DeleteAddon", mock.Anything, "addon-1").Return(nil)
	mocks.cache.On("InvalidateAddon", mock.Anything, "addon-1").Return(nil)
	mocks.kafka.On("PublishAddonDeleted", "addon-1").Return(nil)

	require.NoError(t, svc.DeleteAddon(context.Background(), "addon-1"))
	mocks.db.AssertExpectations(t)
	mocks.kafka.AssertExpectations(t)
}
