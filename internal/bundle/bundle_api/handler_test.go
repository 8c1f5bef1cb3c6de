package bundle_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-addons/internal/bundle"
	"ms-addons/internal/bundle/bundle_api"
	"ms-addons/internal/logger"
	"ms-addons/internal/models"
)

// stubBundleStore simulates the bundle persistence layer with a map.
type stubBundleStore struct {
	bundles       map[string]*models.AddonBundle
	shouldFailOn  string
	errorToReturn error
}

func newStubBundleStore() *stubBundleStore {
	return &stubBundleStore{bundles: make(map[string]*models.AddonBundle)}
}

func (s *stubBundleStore) UpsertBundle(ctx context.Context, b *models.AddonBundle) error {
	if s.shouldFailOn == "UpsertBundle" {
		return s.errorToReturn
	}
	s.bundles[b.ExperienceID] = b
	return nil
}

func (s *stubBundleStore) GetBundleByExperience(ctx context.Context, experienceID string) (*models.AddonBundle, error) {
	if s.shouldFailOn == "GetBundleByExperience" {
		return nil, s.errorToReturn
	}
	if b, ok := s.bundles[experienceID]; ok {
		return b, nil
	}
	return models.EmptyBundle(experienceID), nil
}

func (s *stubBundleStore) DeleteBundle(ctx context.Context, experienceID string) error {
	if s.shouldFailOn == "DeleteBundle" {
		return s.errorToReturn
	}
	delete(s.bundles, experienceID)
	return nil
}

func (s *stubBundleStore) ReferencesAddon(ctx context.Context, addonID string) (bool, error) {
	for _, b := range s.bundles {
		if b.HasAddon(addonID) {
			return true, nil
		}
	}
	return false, nil
}

// stubCatalog resolves every requested ID as an available add-on unless it is
// listed in missing.
type stubCatalog struct {
	missing map[string]bool
}

func (s *stubCatalog) FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error) {
	addons := make([]*models.Addon, 0, len(ids))
	for _, id := range ids {
		if s.missing[id] {
			continue
		}
		a, err := models.NewAddon(models.AddonParams{
			ID:   id,
			Name: "Add-on " + id,
			Pricing: models.AddonPricing{
				BasePrice:      100,
				CommissionRate: 10,
			},
		})
		if err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, nil
}

type stubPublisher struct {
	replaced []string
	cleared  []string
}

func (s *stubPublisher) PublishBundleReplaced(b models.AddonBundle) error {
	s.replaced = append(s.replaced, b.ExperienceID)
	return nil
}

func (s *stubPublisher) PublishBundleCleared(experienceID string) error {
	s.cleared = append(s.cleared, experienceID)
	return nil
}

type handlerFixture struct {
	router  *chi.Mux
	store   *stubBundleStore
	catalog *stubCatalog
	kafka   *stubPublisher
}

func setupHandler() handlerFixture {
	log := logger.NewLogger()
	store := newStubBundleStore()
	catalog := &stubCatalog{missing: make(map[string]bool)}
	kafka := &stubPublisher{}

	svc := bundle.NewBundleService(store, kafka, bundle.NewValidator(catalog, log), log)
	handler := bundle_api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/experiences/{experienceId}/bundle", func(r chi.Router) {
		r.Put("/", handler.ReplaceBundle)
		r.Get("/", handler.GetBundle)
		r.Delete("/", handler.DeleteBundle)
		r.Post("/validate", handler.ValidateBundle)
		r.Post("/price", handler.QuoteBundle)
		r.Get("/commissions", handler.GetCommissions)
	})

	return handlerFixture{router: r, store: store, catalog: catalog, kafka: kafka}
}

func bundleBody(t *testing.T, included, optional []models.AddonReference) *bytes.Buffer {
	t.Helper()
	payload, err := json.Marshal(models.BundleRequest{
		IncludedAddOns: included,
		OptionalAddOns: optional,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(payload)
}

func apiRef(id string, pricing float64, partnerID string) models.AddonReference {
	return models.AddonReference{
		AddonID:        id,
		PartnerID:      partnerID,
		Name:           "Add-on " + id,
		Pricing:        pricing,
		CommissionRate: 10,
	}
}

func TestReplaceBundleEndpoint(t *testing.T) {
	fixture := setupHandler()

	body := bundleBody(t,
		[]models.AddonReference{apiRef("a1", 100, "p1")},
		[]models.AddonReference{apiRef("a2", 50, "p2")})
	req := httptest.NewRequest(http.MethodPut, "/experiences/exp-1/bundle", body)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IsValid bool                     `json:"isValid"`
		Errors  []bundle.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsValid)
	assert.Empty(t, resp.Errors)

	stored, ok := fixture.store.bundles["exp-1"]
	require.True(t, ok, "valid bundle must be persisted")
	assert.Equal(t, 2, stored.TotalCount())
	assert.Equal(t, []string{"exp-1"}, fixture.kafka.replaced)
}

func TestReplaceBundleEndpointInvalidIs422(t *testing.T) {
	fixture := setupHandler()
	fixture.catalog.missing["ghost"] = true

	body := bundleBody(t, []models.AddonReference{apiRef("ghost", 100, "p1")}, nil)
	req := httptest.NewRequest(http.MethodPut, "/experiences/exp-1/bundle", body)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		IsValid bool                     `json:"isValid"`
		Errors  []bundle.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsValid)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, bundle.ErrKindAddonNotFound, resp.Errors[0].Kind)
	assert.Equal(t, "ghost", resp.Errors[0].AddonID)

	_, persisted := fixture.store.bundles["exp-1"]
	assert.False(t, persisted, "invalid bundle must not be persisted")
}

func TestReplaceBundleEndpointDuplicateIs400(t *testing.T) {
	fixture := setupHandler()

	body := bundleBody(t,
		[]models.AddonReference{apiRef("a1", 100, "p1")},
		[]models.AddonReference{apiRef("a1", 100, "p1")})
	req := httptest.NewRequest(http.MethodPut, "/experiences/exp-1/bundle", body)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Duplicate add-on")
}

func TestGetBundleEndpointUnknownExperienceIsEmpty(t *testing.T) {
	fixture := setupHandler()

	req := httptest.NewRequest(http.MethodGet, "/experiences/exp-9/bundle", nil)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.AddonBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "exp-9", got.ExperienceID)
	assert.Empty(t, got.IncludedAddons)
	assert.Empty(t, got.OptionalAddons)
}

func TestDeleteBundleEndpoint(t *testing.T) {
	fixture := setupHandler()
	b, err := models.NewAddonBundle("exp-1", []models.AddonReference{apiRef("a1", 100, "p1")}, nil)
	require.NoError(t, err)
	fixture.store.bundles["exp-1"] = b

	req := httptest.NewRequest(http.MethodDelete, "/experiences/exp-1/bundle", nil)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, exists := fixture.store.bundles["exp-1"]
	assert.False(t, exists)
	assert.Equal(t, []string{"exp-1"}, fixture.kafka.cleared)
}

func TestQuoteBundleEndpoint(t *testing.T) {
	fixture := setupHandler()
	b, err := models.NewAddonBundle("exp-1",
		[]models.AddonReference{apiRef("a1", 100, "p1")},
		[]models.AddonReference{apiRef("a2", 50, "p2")})
	require.NoError(t, err)
	fixture.store.bundles["exp-1"] = b

	payload, err := json.Marshal(models.PriceQuoteRequest{SelectedOptionalIDs: []string{"a2"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/experiences/exp-1/bundle/price", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.PriceQuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 150.0, resp.AddonsTotal)
}

func TestQuoteBundleEndpointBadQuantityIs400(t *testing.T) {
	fixture := setupHandler()
	b, err := models.NewAddonBundle("exp-1", []models.AddonReference{apiRef("a1", 100, "p1")}, nil)
	require.NoError(t, err)
	fixture.store.bundles["exp-1"] = b

	payload := []byte(fmt.Sprintf(`{"quantities": {%q: 0}}`, "a1"))
	req := httptest.NewRequest(http.MethodPost, "/experiences/exp-1/bundle/price", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be at least 1")
}

func TestGetCommissionsEndpoint(t *testing.T) {
	fixture := setupHandler()
	b, err := models.NewAddonBundle("exp-1",
		[]models.AddonReference{apiRef("a1", 100, "p1")},
		[]models.AddonReference{apiRef("a2", 50, "p2"), apiRef("a3", 30, "")})
	require.NoError(t, err)
	fixture.store.bundles["exp-1"] = b

	req := httptest.NewRequest(http.MethodGet, "/experiences/exp-1/bundle/commissions", nil)
	rec := httptest.NewRecorder()

	fixture.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CommissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 18.0, resp.TotalCommission)
	assert.Equal(t, map[string]float64{"p1": 10, "p2": 5}, resp.ByPartner)

	_, hasUnattributed := resp.ByPartner[""]
	assert.False(t, hasUnattributed)
}
