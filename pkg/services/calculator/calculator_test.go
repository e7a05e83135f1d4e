package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/services/cost"
	"github.com/de-tools/tco-atlas/pkg/services/matcher"
	"github.com/de-tools/tco-atlas/pkg/store/catalog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingModel struct {
	target string
	panics bool
}

func (f failingModel) Target() string { return f.target }

func (f failingModel) Estimate(context.Context, domain.ResourceRequest) (*domain.CostBreakdown, error) {
	if f.panics {
		panic("boom")
	}
	return nil, errors.New("rate table missing")
}

func bundledModels(t *testing.T) ([]cost.Model, map[string]*catalog.Holder) {
	t.Helper()

	holders := make(map[string]*catalog.Holder)
	var models []cost.Model
	for _, provider := range []string{domain.TargetAWS, domain.TargetAzure, domain.TargetGCP} {
		c, err := catalog.Default(provider)
		require.NoError(t, err)
		holders[provider] = catalog.NewHolder(provider, c)

		m, err := matcher.New(holders[provider], matcher.DefaultConfig(provider))
		require.NoError(t, err)
		rates, _ := cost.DefaultUnitRates(provider)
		model, err := cost.NewCatalogModel(provider, m, rates)
		require.NoError(t, err)
		models = append(models, model)
	}

	onprem, err := cost.NewTCOModel(domain.TargetOnPrem, cost.DefaultOnPremParams())
	require.NoError(t, err)
	k8s, err := cost.NewTCOModel(domain.TargetKubernetes, cost.DefaultKubernetesParams())
	require.NoError(t, err)

	return append(models, onprem, k8s), holders
}

func newCalculator(t *testing.T, models ...cost.Model) Calculator {
	t.Helper()
	registry, err := cost.NewRegistry(models...)
	require.NoError(t, err)
	calc, err := New(registry)
	require.NoError(t, err)
	return calc
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestCalculate_AllTargets(t *testing.T) {
	models, _ := bundledModels(t)
	calc := newCalculator(t, models...)
	req := domain.ResourceRequest{CPU: 2, RAM: 8, Storage: 100, Network: 10, Backup: 50}

	results, err := calc.Calculate(testContext(t), req)

	require.NoError(t, err)
	assert.Equal(t, []string{"aws", "azure", "gcp", "kubernetes", "onprem"}, calc.Targets())
	require.Len(t, results, 5)

	for target, b := range results {
		assert.Equal(t, target, b.Provider)
		assert.Equal(t, domain.CurrencyUSD, b.Currency)
		assert.True(t, b.Total.GreaterThanOrEqual(decimal.Zero))
	}

	aws := results[domain.TargetAWS]
	require.NotNil(t, aws.SelectedInstance)
	assert.Equal(t, "t3.large", aws.SelectedInstance.SKU)
	assert.Equal(t, "361.49", aws.Total.StringFixed(2))

	azure := results[domain.TargetAzure]
	assert.Equal(t, "Standard_D2s_v3", azure.SelectedInstance.SKU)
	assert.Equal(t, "353.97", azure.Total.StringFixed(2))

	assert.Equal(t, "56.51", results[domain.TargetOnPrem].Total.StringFixed(2))
	assert.Equal(t, "129.89", results[domain.TargetKubernetes].Total.StringFixed(2))
}

func TestCalculate_Properties(t *testing.T) {
	models, _ := bundledModels(t)
	calc := newCalculator(t, models...)
	ctx := testContext(t)
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		req := domain.ResourceRequest{
			CPU:     rnd.Intn(64),
			RAM:     float64(rnd.Intn(512)) + rnd.Float64(),
			Storage: rnd.Float64() * 5000,
			Network: rnd.Float64() * 1000,
			Backup:  rnd.Float64() * 2000,
		}

		results, err := calc.Calculate(ctx, req)
		require.NoError(t, err)

		for target, b := range results {
			sum := decimal.Zero
			for _, item := range b.Items {
				sum = sum.Add(item.Amount)
			}
			assert.True(t, sum.Sub(b.Total).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)), "%s: %+v", target, req)
			assert.False(t, b.Total.IsNegative(), "%s: %+v", target, req)

			if s := b.SelectedInstance; s != nil {
				assert.GreaterOrEqual(t, s.Count, 1)
				// every bundled target scales out by default
				assert.GreaterOrEqual(t, s.Count*s.VCPU, req.CPU, "%s: %+v", target, req)
			}
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	models, _ := bundledModels(t)
	calc := newCalculator(t, models...)
	req := domain.ResourceRequest{CPU: 6, RAM: 32, Storage: 250, Network: 25, Backup: 100}

	first, err := calc.Calculate(testContext(t), req)
	require.NoError(t, err)
	second, err := calc.Calculate(testContext(t), req)
	require.NoError(t, err)

	a, err := json.Marshal(adapters.MapCostBreakdownsDomainToApi(first))
	require.NoError(t, err)
	b, err := json.Marshal(adapters.MapCostBreakdownsDomainToApi(second))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCalculate_UnitFieldsMonotonic(t *testing.T) {
	models, _ := bundledModels(t)
	calc := newCalculator(t, models...)
	ctx := testContext(t)

	base := domain.ResourceRequest{CPU: 4, RAM: 16, Storage: 100, Network: 10, Backup: 10}
	steps := []func(*domain.ResourceRequest){
		func(r *domain.ResourceRequest) { r.Storage += 50 },
		func(r *domain.ResourceRequest) { r.Network += 5 },
		func(r *domain.ResourceRequest) { r.Backup += 25 },
	}

	for _, step := range steps {
		req := base
		prev, err := calc.Calculate(ctx, req)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			step(&req)
			next, err := calc.Calculate(ctx, req)
			require.NoError(t, err)
			for target := range next {
				assert.True(t, next[target].Total.GreaterThanOrEqual(prev[target].Total), "%s decreased for %+v", target, req)
			}
			prev = next
		}
	}
}

func TestCalculate_FailureIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name  string
		model failingModel
	}{
		{name: "model error", model: failingModel{target: "broken"}},
		{name: "model panic", model: failingModel{target: "broken", panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, _ := bundledModels(t)
			calc := newCalculator(t, append(models, tt.model)...)

			results, err := calc.Calculate(testContext(t), domain.ResourceRequest{CPU: 2, RAM: 8})

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInternalComputation))
			assert.Nil(t, results)
		})
	}
}

func TestCalculate_EmptyCatalogFails(t *testing.T) {
	holder := catalog.NewHolder(domain.TargetAWS, &domain.Catalog{})
	m, err := matcher.New(holder, matcher.DefaultConfig(domain.TargetAWS))
	require.NoError(t, err)
	rates, _ := cost.DefaultUnitRates(domain.TargetAWS)
	model, err := cost.NewCatalogModel(domain.TargetAWS, m, rates)
	require.NoError(t, err)

	_, err = newCalculator(t, model).Calculate(testContext(t), domain.ResourceRequest{CPU: 1})

	assert.True(t, errors.Is(err, domain.ErrInternalComputation))
}

func TestCalculate_ConcurrentWithCatalogSwap(t *testing.T) {
	models, holders := bundledModels(t)
	calc := newCalculator(t, models...)
	ctx := testContext(t)
	original := holders[domain.TargetAWS].Current()

	cheaper := *original
	cheaper.SKUs = append([]domain.SKU(nil), original.SKUs...)
	for i := range cheaper.SKUs {
		cheaper.SKUs[i].Price /= 2
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results, err := calc.Calculate(ctx, domain.ResourceRequest{CPU: 2, RAM: 8})
				if !assert.NoError(t, err) {
					return
				}
				compute, _ := results[domain.TargetAWS].Amount(cost.CategoryCompute)
				assert.Contains(t, []string{"60.74", "30.37"}, compute.StringFixed(2))
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			holders[domain.TargetAWS].Replace(&cheaper)
		} else {
			holders[domain.TargetAWS].Replace(original)
		}
	}
	wg.Wait()
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	empty, err := cost.NewRegistry()
	require.NoError(t, err)
	_, err = New(empty)
	assert.Error(t, err)
}
