package pricesync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	SourcePublic = "public"
	SourceAPI    = "api"

	DefaultOffersURL = "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonEC2/current"
)

// Source looks up hourly on-demand prices. SKUs without a price are absent from the result.
type Source interface {
	Name() string
	Lookup(ctx context.Context, skus []string, location Location) (map[string]*float64, error)
}

type PublicSourceOptions struct {
	BaseURL  string
	RetryMax int
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// PublicSource downloads the unauthenticated regional EC2 offer index.
type PublicSource struct {
	client  *retryablehttp.Client
	baseURL string
}

func NewPublicSource(opts PublicSourceOptions) *PublicSource {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = retryLogger{logger: opts.Logger}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultOffersURL
	}

	return &PublicSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *PublicSource) Name() string {
	return SourcePublic
}

func (s *PublicSource) Lookup(ctx context.Context, skus []string, location Location) (map[string]*float64, error) {
	url := fmt.Sprintf("%s/%s/index.json", s.baseURL, location.Region)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build offers request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download offers: %v", domain.ErrPricingSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download offers: unexpected status %d from %s", domain.ErrPricingSourceUnavailable, resp.StatusCode, url)
	}

	var offers offerFile
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		return nil, fmt.Errorf("%w: decode offers: %v", domain.ErrPricingSourceUnavailable, err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("products", len(offers.Products)).
		Str("url", url).
		Msg("downloaded offers")

	return extractPrices(offers, skus, location.Name), nil
}

// ProductsAPI is the part of the Pricing API client the api source calls.
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// APISource queries the authenticated AWS Pricing API one SKU at a time.
type APISource struct {
	client ProductsAPI
}

func NewAPISource(client ProductsAPI) *APISource {
	return &APISource{client: client}
}

// NewAPISourceFromConfig builds the client from the default credential chain. The
// Pricing API is served from us-east-1 whatever location is priced.
func NewAPISourceFromConfig(ctx context.Context, profile string) (*APISource, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load AWS config: %v", domain.ErrPricingSourceUnavailable, err)
	}
	return NewAPISource(pricing.NewFromConfig(cfg)), nil
}

func (s *APISource) Name() string {
	return SourceAPI
}

func (s *APISource) Lookup(ctx context.Context, skus []string, location Location) (map[string]*float64, error) {
	logger := zerolog.Ctx(ctx)
	found := make(map[string]*float64, len(skus))

	for _, sku := range skus {
		out, err := s.client.GetProducts(ctx, &pricing.GetProductsInput{
			ServiceCode:   aws.String("AmazonEC2"),
			FormatVersion: aws.String("aws_v1"),
			Filters:       productFilters(sku, location.Name),
			MaxResults:    aws.Int32(10),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get products for %s: %v", domain.ErrPricingSourceUnavailable, sku, err)
		}

		for _, doc := range out.PriceList {
			var item priceListItem
			if err := json.Unmarshal([]byte(doc), &item); err != nil {
				logger.Warn().Err(err).Str("sku", sku).Msg("skipping malformed price list entry")
				continue
			}
			if price, ok := firstUSDPrice(item.Terms.OnDemand); ok {
				found[sku] = &price
				break
			}
		}
	}

	return found, nil
}

func productFilters(sku, location string) []types.Filter {
	terms := [][2]string{
		{"instanceType", sku},
		{"location", location},
		{"operatingSystem", "Linux"},
		{"tenancy", "Shared"},
		{"preInstalledSw", "NA"},
		{"capacitystatus", "Used"},
	}

	filters := make([]types.Filter, 0, len(terms))
	for _, term := range terms {
		filters = append(filters, types.Filter{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String(term[0]),
			Value: aws.String(term[1]),
		})
	}
	return filters
}

// retryLogger routes retryablehttp's leveled logging into zerolog.
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
