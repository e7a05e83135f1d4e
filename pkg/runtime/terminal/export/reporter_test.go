package export

import (
	"bytes"
	"testing"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() map[string]domain.CostBreakdown {
	return map[string]domain.CostBreakdown{
		domain.TargetAWS: {
			Provider: domain.TargetAWS,
			Total:    decimal.RequireFromString("70.74"),
			Currency: domain.CurrencyUSD,
			Items: []domain.LineItem{
				{Category: "compute", Amount: decimal.RequireFromString("60.74")},
				{Category: "storage", Amount: decimal.RequireFromString("10.00")},
			},
			SelectedInstance: &domain.SelectedInstance{SKU: "t3.large", VCPU: 2, RAMGB: 8, Count: 1, RequirementMet: true},
		},
		domain.TargetOnPrem: {
			Provider:    domain.TargetOnPrem,
			Total:       decimal.RequireFromString("1.50"),
			Currency:    domain.CurrencyUSD,
			Items:       []domain.LineItem{{Category: "cpu", Amount: decimal.RequireFromString("1.50")}},
			Assumptions: "3-year amortization",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "csv", want: FormatCSV},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineItemRows(t *testing.T) {
	rows := LineItemRows([]string{"aws", "gcp", "onprem"}, sampleResults())

	assert.Equal(t, []LineItemRow{
		{Target: "aws", Category: "compute", Amount: "60.74", Currency: "USD"},
		{Target: "aws", Category: "storage", Amount: "10.00", Currency: "USD"},
		{Target: "aws", Category: "total", Amount: "70.74", Currency: "USD"},
		{Target: "onprem", Category: "cpu", Amount: "1.50", Currency: "USD"},
		{Target: "onprem", Category: "total", Amount: "1.50", Currency: "USD"},
	}, rows)
}

func TestReporter_CSV(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)

	require.NoError(t, reporter.CSV(LineItemRows([]string{"onprem"}, sampleResults())))

	assert.Equal(t, "target,category,amount,currency\nonprem,cpu,1.50,USD\nonprem,total,1.50,USD\n", out.String())
}

func TestReporter_Handle(t *testing.T) {
	// Given
	var out bytes.Buffer
	reporter := NewReporter(&out)
	report := &domain.Report{
		Title:    "Monthly cost estimate",
		Request:  domain.ResourceRequest{CPU: 2, RAM: 8},
		Currency: domain.CurrencyUSD,
		Sections: []domain.ReportSection{{
			Title:       "onprem",
			Total:       1.5,
			Summary:     map[string]interface{}{"instance": "1 x box"},
			Details:     []domain.ReportDetail{{Name: "cpu", Value: "1.50", Unit: "USD"}},
			Assumptions: "3-year amortization",
		}},
	}

	// When
	err := reporter.Handle(report)

	// Then
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Monthly cost estimate")
	assert.Contains(t, text, "=== onprem: USD 1.50 ===")
	assert.Contains(t, text, "instance: 1 x box")
	assert.Contains(t, text, "| cpu ")
	assert.Contains(t, text, "Assumptions: 3-year amortization")
}

func TestReporter_Catalog(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)
	snapshot := &domain.Catalog{
		Provider: "aws",
		Location: "embedded:defaults/aws.json",
		SKUs: []domain.SKU{
			{ID: "m5.large", Category: domain.CategoryGeneral, VCPU: 2, RAMGB: 8, Price: 0.5, PriceUnit: domain.PriceUnitHour},
		},
	}

	require.NoError(t, reporter.Catalog(snapshot))
	assert.Contains(t, out.String(), "aws catalog (1 SKUs)")
	assert.Contains(t, out.String(), "365.00")
	assert.Contains(t, out.String(), "8 / general")

	assert.Equal(t, []SKURow{{SKU: "m5.large", Category: "general", VCPU: 2, RAMGB: 8, PricePerMonth: "365.00"}}, SKURows(snapshot))
}
