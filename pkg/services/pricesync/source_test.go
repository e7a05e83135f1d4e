package pricesync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const offersFixture = `{
  "products": {
    "P1": {"sku": "P1", "attributes": {"instanceType": "m5.large", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared", "preInstalledSw": "NA", "capacitystatus": "Used"}},
    "P2": {"sku": "P2", "attributes": {"instanceType": "m5.large", "location": "US East (N. Virginia)", "operatingSystem": "Windows", "tenancy": "Shared"}},
    "P3": {"sku": "P3", "attributes": {"instanceType": "c5.large", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Dedicated"}},
    "P4": {"sku": "P4", "attributes": {"instanceType": "c5.large", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared", "capacitystatus": "AllocatedCapacityReservation"}},
    "P5": {"sku": "P5", "attributes": {"instanceType": "c5.large", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared", "preInstalledSw": "SQL Std"}},
    "P6": {"sku": "P6", "attributes": {"instanceType": "r5.large", "location": "EU (Ireland)", "operatingSystem": "Linux", "tenancy": "Shared"}},
    "P7": {"sku": "P7", "attributes": {"instanceType": "t3.micro", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared"}},
    "P8": {"sku": "P8", "attributes": {"instanceType": "t3.micro", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared"}}
  },
  "terms": {
    "OnDemand": {
      "P1": {"P1.T1": {"priceDimensions": {"P1.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0960000000"}}}}},
      "P2": {"P2.T1": {"priceDimensions": {"P2.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.1880000000"}}}}},
      "P3": {"P3.T1": {"priceDimensions": {"P3.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0940000000"}}}}},
      "P4": {"P4.T1": {"priceDimensions": {"P4.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0000000000"}}}}},
      "P5": {"P5.T1": {"priceDimensions": {"P5.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.4650000000"}}}}},
      "P6": {"P6.T1": {"priceDimensions": {"P6.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.1410000000"}}}}},
      "P7": {"P7.T1": {"priceDimensions": {"P7.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0000000000"}}}}},
      "P8": {"P8.T1": {"priceDimensions": {"P8.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0104000000"}}}}}
    }
  }
}`

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr bool
	}{
		{name: "empty defaults to us-east-1", input: "", want: Location{Region: "us-east-1", Name: "US East (N. Virginia)"}},
		{name: "region code", input: "eu-west-1", want: Location{Region: "eu-west-1", Name: "EU (Ireland)"}},
		{name: "region code upper case", input: "US-WEST-2", want: Location{Region: "us-west-2", Name: "US West (Oregon)"}},
		{name: "human name", input: "US East (N. Virginia)", want: Location{Region: "us-east-1", Name: "US East (N. Virginia)"}},
		{name: "unknown", input: "mars-north-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLocation(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublicSource_Lookup(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(offersFixture))
	}))
	defer server.Close()

	source := NewPublicSource(PublicSourceOptions{BaseURL: server.URL + "/", Logger: zerolog.New(zerolog.NewTestWriter(t))})
	loc, err := ResolveLocation("us-east-1")
	require.NoError(t, err)

	// When
	prices, err := source.Lookup(context.Background(), []string{"m5.large", "c5.large", "r5.large", "t3.micro", "x1e.32xlarge"}, loc)

	// Then only shared Linux on-demand products in the location priced above zero count
	require.NoError(t, err)
	assert.Equal(t, "/us-east-1/index.json", requested)
	assert.Equal(t, SourcePublic, source.Name())

	require.Contains(t, prices, "m5.large")
	assert.Equal(t, 0.096, *prices["m5.large"])
	require.Contains(t, prices, "t3.micro")
	assert.Equal(t, 0.0104, *prices["t3.micro"])
	assert.NotContains(t, prices, "c5.large")
	assert.NotContains(t, prices, "r5.large")
	assert.NotContains(t, prices, "x1e.32xlarge")
}

func TestPublicSource_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			source := NewPublicSource(PublicSourceOptions{BaseURL: server.URL, RetryMax: 0})
			_, err := source.Lookup(context.Background(), []string{"m5.large"}, Location{Region: "us-east-1", Name: "US East (N. Virginia)"})

			assert.ErrorIs(t, err, domain.ErrPricingSourceUnavailable)
		})
	}
}

type mockProductsAPI struct {
	mock.Mock
}

func (m *mockProductsAPI) GetProducts(ctx context.Context, params *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*pricing.GetProductsOutput)
	return out, args.Error(1)
}

func filterValue(filters []types.Filter, field string) string {
	for _, f := range filters {
		if aws.ToString(f.Field) == field {
			return aws.ToString(f.Value)
		}
	}
	return ""
}

func TestAPISource_Lookup(t *testing.T) {
	// Given an API that prices m5.large and has nothing for c5.large
	api := &mockProductsAPI{}
	api.On("GetProducts", mock.Anything, mock.MatchedBy(func(in *pricing.GetProductsInput) bool {
		return filterValue(in.Filters, "instanceType") == "m5.large"
	})).Return(&pricing.GetProductsOutput{PriceList: []string{
		`not json`,
		`{"product": {"attributes": {"instanceType": "m5.large"}}, "terms": {"OnDemand": {"term1": {"priceDimensions": {"pd1": {"pricePerUnit": {"USD": "0.1234"}}}}}}}`,
	}}, nil)
	api.On("GetProducts", mock.Anything, mock.MatchedBy(func(in *pricing.GetProductsInput) bool {
		return filterValue(in.Filters, "instanceType") == "c5.large"
	})).Return(&pricing.GetProductsOutput{}, nil)

	source := NewAPISource(api)
	loc := Location{Region: "eu-west-1", Name: "EU (Ireland)"}

	// When
	prices, err := source.Lookup(context.Background(), []string{"m5.large", "c5.large"}, loc)

	// Then
	require.NoError(t, err)
	require.Contains(t, prices, "m5.large")
	assert.Equal(t, 0.1234, *prices["m5.large"])
	assert.NotContains(t, prices, "c5.large")

	in := api.Calls[0].Arguments.Get(1).(*pricing.GetProductsInput)
	assert.Equal(t, "AmazonEC2", aws.ToString(in.ServiceCode))
	assert.Equal(t, "aws_v1", aws.ToString(in.FormatVersion))
	assert.Equal(t, "EU (Ireland)", filterValue(in.Filters, "location"))
	assert.Equal(t, "Linux", filterValue(in.Filters, "operatingSystem"))
	assert.Equal(t, "Shared", filterValue(in.Filters, "tenancy"))
	for _, f := range in.Filters {
		assert.Equal(t, types.FilterTypeTermMatch, f.Type)
	}
	api.AssertExpectations(t)
}

func TestAPISource_Unavailable(t *testing.T) {
	api := &mockProductsAPI{}
	api.On("GetProducts", mock.Anything, mock.Anything).Return(nil, errors.New("UnrecognizedClientException"))

	_, err := NewAPISource(api).Lookup(context.Background(), []string{"m5.large"}, Location{Region: "us-east-1", Name: "US East (N. Virginia)"})

	assert.ErrorIs(t, err, domain.ErrPricingSourceUnavailable)
	assert.Contains(t, err.Error(), "m5.large")
}
