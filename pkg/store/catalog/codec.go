package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/de-tools/tco-atlas/pkg/models/store"
	"github.com/jszwec/csvutil"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatOf derives the catalog format from the file extension. Unknown extensions are read as JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

func DecodeRecords(format Format, raw []byte) ([]store.SKURecord, error) {
	var records []store.SKURecord
	switch format {
	case FormatCSV:
		if err := csvutil.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to decode csv catalog: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode json catalog: %w", err)
		}
	}
	return records, nil
}

// EncodeRecords serializes records in canonical form, folding alias fields.
func EncodeRecords(format Format, records []store.SKURecord) ([]byte, error) {
	normalized := make([]store.SKURecord, 0, len(records))
	for _, rec := range records {
		rec.SKU = rec.ID()
		rec.InstanceType = ""
		rec.RAMGB = rec.Memory()
		rec.MemoryGB = nil
		normalized = append(normalized, rec)
	}

	if format == FormatCSV {
		data, err := csvutil.Marshal(normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to encode csv catalog: %w", err)
		}
		return data, nil
	}

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json catalog: %w", err)
	}
	return append(data, '\n'), nil
}
