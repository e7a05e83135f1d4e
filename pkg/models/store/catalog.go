package store

// SKURecord is the on-disk shape of a catalog entry. Alias fields are accepted
// on read and dropped on write.
type SKURecord struct {
	SKU           string   `json:"sku,omitempty" csv:"sku"`
	InstanceType  string   `json:"instance_type,omitempty" csv:"-"`
	Family        string   `json:"family,omitempty" csv:"family,omitempty"`
	Category      string   `json:"category,omitempty" csv:"category,omitempty"`
	VCPU          int      `json:"vcpu" csv:"vcpu"`
	RAMGB         *float64 `json:"ram_gb,omitempty" csv:"ram_gb,omitempty"`
	MemoryGB      *float64 `json:"memory_gb,omitempty" csv:"-"`
	PricePerHour  *float64 `json:"price_per_hour,omitempty" csv:"price_per_hour,omitempty"`
	PricePerMonth *float64 `json:"price_per_month,omitempty" csv:"price_per_month,omitempty"`
	Description   string   `json:"description,omitempty" csv:"description,omitempty"`
}

// ID returns the record identifier, honouring the instance_type alias.
func (r SKURecord) ID() string {
	if r.SKU != "" {
		return r.SKU
	}
	return r.InstanceType
}

// Memory returns the RAM size, honouring the memory_gb alias.
func (r SKURecord) Memory() *float64 {
	if r.RAMGB != nil {
		return r.RAMGB
	}
	return r.MemoryGB
}
