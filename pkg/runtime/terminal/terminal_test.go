package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{
		Output: &out,
		Logger: zerolog.New(zerolog.NewTestWriter(t)),
	})
	err := cli.ExecuteContext(context.Background(), args...)
	return out.String(), err
}

var workload = []string{"--cpu", "2", "--ram", "8", "--storage", "100", "--network", "1", "--backup", "50"}

func TestCLI_Targets(t *testing.T) {
	out, err := run(t, "targets")

	require.NoError(t, err)
	assert.Equal(t, "aws\nazure\ngcp\nkubernetes\nonprem\n", out)
}

func TestCLI_Estimate(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, out string)
	}{
		{
			name: "table",
			args: workload,
			verify: func(t *testing.T, out string) {
				assert.Contains(t, out, "=== aws: USD")
				assert.Contains(t, out, "=== onprem: USD")
				assert.Contains(t, out, "instance: 1 x ")
			},
		},
		{
			name: "json filtered by target",
			args: append([]string{"--target", "onprem", "--target", "kubernetes", "-o", "json"}, workload...),
			verify: func(t *testing.T, out string) {
				var response map[string]api.CostBreakdown
				require.NoError(t, json.Unmarshal([]byte(out), &response))
				assert.Len(t, response, 2)
				assert.Contains(t, response, "onprem")
				assert.Contains(t, response, "kubernetes")
				assert.Equal(t, "USD", response["onprem"].Currency)
			},
		},
		{
			name: "csv",
			args: append([]string{"--target", "onprem", "-o", "csv"}, workload...),
			verify: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				assert.Equal(t, "target,category,amount,currency", lines[0])
				assert.True(t, strings.HasPrefix(lines[len(lines)-1], "onprem,total,"))
				for _, line := range lines[1:] {
					assert.True(t, strings.HasPrefix(line, "onprem,"), line)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When
			out, err := run(t, append([]string{"estimate"}, tt.args...)...)

			// Then
			require.NoError(t, err)
			tt.verify(t, out)
		})
	}
}

func TestCLI_EstimateErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "negative ram",
			args:    []string{"--cpu", "2", "--ram", "-1", "--storage", "0", "--network", "0", "--backup", "0"},
			wantErr: "ram",
		},
		{
			name:    "missing flag",
			args:    []string{"--cpu", "2"},
			wantErr: "required flag",
		},
		{
			name:    "unknown target",
			args:    append([]string{"--target", "oracle"}, workload...),
			wantErr: `unknown target "oracle"`,
		},
		{
			name:    "unknown format",
			args:    append([]string{"-o", "xml"}, workload...),
			wantErr: "unsupported output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"estimate"}, tt.args...)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("negative values are validation errors", func(t *testing.T) {
		_, err := run(t, "estimate", "--cpu", "-1", "--ram", "0", "--storage", "0", "--network", "0", "--backup", "0")

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCLI_CatalogList(t *testing.T) {
	out, err := run(t, "catalog", "list", "--provider", "aws", "-o", "csv")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "sku,family,category,vcpu,ram_gb,price_per_month", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "t3.micro,t3,burstable,2,1,"))

	_, err = run(t, "catalog", "list", "--provider", "oracle")
	assert.Error(t, err)
}

func TestCLI_PricesWithoutCatalogPath(t *testing.T) {
	_, err := run(t, "prices", "sync")
	assert.ErrorIs(t, err, commands.ErrNoSyncer)

	_, err = run(t, "prices", "history", "--limit", "0")
	assert.Error(t, err)
}

const pricedCatalog = `[
  {"sku": "m5.large", "family": "m5", "category": "general", "vcpu": 2, "ram_gb": 8, "price_per_hour": 0.09}
]`

const m5Offers = `{
  "products": {
    "P1": {"sku": "P1", "attributes": {"instanceType": "m5.large", "location": "US East (N. Virginia)", "operatingSystem": "Linux", "tenancy": "Shared"}}
  },
  "terms": {
    "OnDemand": {
      "P1": {"P1.T1": {"priceDimensions": {"P1.T1.D1": {"unit": "Hrs", "pricePerUnit": {"USD": "0.0960000000"}}}}}
    }
  }
}`

func TestCLI_PricesSyncUsesSchedule(t *testing.T) {
	offers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(m5Offers))
	}))
	defer offers.Close()

	tests := []struct {
		name           string
		args           []string
		expectedPrices string
	}{
		{
			name:           "scheduled options write back",
			args:           []string{"prices", "sync"},
			expectedPrices: "0.096",
		},
		{
			name:           "explicit flag overrides schedule",
			args:           []string{"prices", "sync", "--write-back=false"},
			expectedPrices: "0.09",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			dir := t.TempDir()
			catalogPath := filepath.Join(dir, "aws.json")
			require.NoError(t, os.WriteFile(catalogPath, []byte(pricedCatalog), 0o644))
			configPath := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(
				"catalogs:\n  aws:\n    path: %s\nprice_sync:\n  enabled: true\n  write_back: true\n  offers_url: %s\n  cache_path: %s\n",
				catalogPath, offers.URL, filepath.Join(dir, "prices.json"),
			)), 0o644))

			// When
			out, err := run(t, append(tt.args, "--config", configPath)...)

			// Then
			require.NoError(t, err)
			assert.Contains(t, out, "m5.large\t0.096000")
			assert.Contains(t, out, "priced 1 of 1 SKUs")

			written, err := os.ReadFile(catalogPath)
			require.NoError(t, err)
			var records []map[string]interface{}
			require.NoError(t, json.Unmarshal(written, &records))
			require.Len(t, records, 1)
			assert.Equal(t, tt.expectedPrices, fmt.Sprint(records[0]["price_per_hour"]))
		})
	}
}
