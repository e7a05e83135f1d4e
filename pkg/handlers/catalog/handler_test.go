package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	catalogstore "github.com/de-tools/tco-atlas/pkg/store/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withProvider(req *http.Request, provider string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("provider", provider)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestHandler_GetCatalog(t *testing.T) {
	loadedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	aws := catalogstore.NewHolder(domain.TargetAWS, &domain.Catalog{
		Provider: domain.TargetAWS,
		Location: "data/aws_catalog.json",
		LoadedAt: loadedAt,
		SKUs: []domain.SKU{
			{ID: "t3.large", Family: "t3", Category: domain.CategoryBurstable, VCPU: 2, RAMGB: 8, Price: 0.5, PriceUnit: domain.PriceUnitHour},
		},
	})
	empty := catalogstore.NewHolder(domain.TargetGCP, nil)
	handler := NewHandler(aws, empty)

	tests := []struct {
		name           string
		provider       string
		expectedStatus int
	}{
		{name: "known provider", provider: "aws", expectedStatus: http.StatusOK},
		{name: "unknown provider", provider: "oracle", expectedStatus: http.StatusNotFound},
		{name: "no snapshot", provider: "gcp", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withProvider(httptest.NewRequest(http.MethodGet, "/api/v1/catalogs/"+tt.provider, nil), tt.provider)
			rec := httptest.NewRecorder()

			handler.GetCatalog(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}

	t.Run("response shape", func(t *testing.T) {
		req := withProvider(httptest.NewRequest(http.MethodGet, "/api/v1/catalogs/aws", nil), "aws")
		rec := httptest.NewRecorder()

		handler.GetCatalog(rec, req)

		var response api.Catalog
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "aws", response.Provider)
		assert.True(t, loadedAt.Equal(response.LoadedAt))
		require.Len(t, response.SKUs, 1)
		assert.Equal(t, api.SKU{
			SKU: "t3.large", Family: "t3", Category: "burstable", VCPU: 2, RAMGB: 8, PricePerMonth: 365,
		}, response.SKUs[0])
	})
}

func TestHandler_ListProviders(t *testing.T) {
	handler := NewHandler(
		catalogstore.NewHolder(domain.TargetGCP, nil),
		catalogstore.NewHolder(domain.TargetAWS, nil),
		catalogstore.NewHolder(domain.TargetAzure, nil),
	)

	rec := httptest.NewRecorder()
	handler.ListProviders(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalogs", nil))

	var providers []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&providers))
	assert.Equal(t, []string{"aws", "azure", "gcp"}, providers)
}
