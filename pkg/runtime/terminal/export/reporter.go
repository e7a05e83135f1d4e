package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/jszwec/csvutil"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table, json, csv)", s)
	}
}

type TableConfig struct {
	NameWidth   int
	ValueWidth  int
	UnitWidth   int
	DetailWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:   20,
		ValueWidth:  14,
		UnitWidth:   8,
		DetailWidth: 48,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name string, value interface{}, unit string, desc string) string {
			return fmt.Sprintf("| %-*s | %*v | %-*s | %-*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value,
				c.config.UnitWidth, unit,
				c.config.DetailWidth, desc)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.UnitWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
	}
}

const reportTemplate = `{{.Title}}
Request: cpu={{.Request.CPU}} ram={{.Request.RAM}}GB storage={{.Request.Storage}}GB network={{.Request.Network}}Mbps backup={{.Request.Backup}}GB
{{range .Sections}}
=== {{.Title}}: {{$.Currency}} {{printf "%.2f" .Total}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}{{separator}}
{{formatRow "Category" "Amount" "Unit" "Description"}}
{{separator}}
{{range .Details}}{{formatRow .Name .Value .Unit .Description}}
{{end}}{{separator}}
{{if .Assumptions}}Assumptions: {{.Assumptions}}
{{end}}{{end}}`

// Handle renders an estimate as one table per target.
func (c *Reporter) Handle(report *domain.Report) error {
	t, err := template.New("report").Funcs(c.funcMap()).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

const catalogTemplate = `{{.Provider}} catalog ({{len .SKUs}} SKUs) from {{.Location}}
{{separator}}
{{formatRow "SKU" "Monthly (USD)" "vCPU" "RAM GB / category"}}
{{separator}}
{{range .SKUs}}{{formatRow .ID (printf "%.2f" .MonthlyPrice) (printf "%d" .VCPU) (printf "%g / %s" .RAMGB .Category)}}
{{end}}{{separator}}
`

func (c *Reporter) Catalog(snapshot *domain.Catalog) error {
	t, err := template.New("catalog").Funcs(c.funcMap()).Parse(catalogTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, snapshot)
}

func (c *Reporter) JSON(v interface{}) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json output: %w", err)
	}
	return nil
}

// CSV writes a slice of structs with csv tags, header first.
func (c *Reporter) CSV(rows interface{}) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode csv output: %w", err)
	}
	_, err = c.writer.Write(data)
	return err
}

type LineItemRow struct {
	Target   string `csv:"target"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
}

// LineItemRows flattens results in the given target order.
func LineItemRows(targets []string, results map[string]domain.CostBreakdown) []LineItemRow {
	var rows []LineItemRow
	for _, target := range targets {
		b, ok := results[target]
		if !ok {
			continue
		}
		for _, item := range b.Items {
			rows = append(rows, LineItemRow{
				Target:   target,
				Category: item.Category,
				Amount:   item.Amount.StringFixed(2),
				Currency: b.Currency,
			})
		}
		rows = append(rows, LineItemRow{
			Target:   target,
			Category: "total",
			Amount:   b.Total.StringFixed(2),
			Currency: b.Currency,
		})
	}
	return rows
}

type SKURow struct {
	SKU           string  `csv:"sku"`
	Family        string  `csv:"family"`
	Category      string  `csv:"category"`
	VCPU          int     `csv:"vcpu"`
	RAMGB         float64 `csv:"ram_gb"`
	PricePerMonth string  `csv:"price_per_month"`
}

func SKURows(snapshot *domain.Catalog) []SKURow {
	rows := make([]SKURow, 0, len(snapshot.SKUs))
	for _, sku := range snapshot.SKUs {
		rows = append(rows, SKURow{
			SKU:           sku.ID,
			Family:        sku.Family,
			Category:      string(sku.Category),
			VCPU:          sku.VCPU,
			RAMGB:         sku.RAMGB,
			PricePerMonth: fmt.Sprintf("%.2f", sku.MonthlyPrice()),
		})
	}
	return rows
}
