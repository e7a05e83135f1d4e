package pricesync

import (
	"sort"
	"strconv"
)

// offerFile is the subset of an EC2 offer index document the refresher reads.
type offerFile struct {
	Products map[string]offerProduct `json:"products"`
	Terms    struct {
		OnDemand map[string]map[string]offerTerm `json:"OnDemand"`
	} `json:"terms"`
}

type offerProduct struct {
	SKU        string            `json:"sku"`
	Attributes map[string]string `json:"attributes"`
}

type offerTerm struct {
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
}

type priceDimension struct {
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// priceListItem is one entry of the Pricing API PriceList.
type priceListItem struct {
	Product offerProduct `json:"product"`
	Terms   struct {
		OnDemand map[string]offerTerm `json:"OnDemand"`
	} `json:"terms"`
}

// matches reports whether the product is an on-demand shared Linux instance in the location.
// preInstalledSw and capacitystatus are only checked when the feed carries them.
func (p offerProduct) matches(location string) bool {
	attrs := p.Attributes
	if attrs["location"] != location || attrs["operatingSystem"] != "Linux" || attrs["tenancy"] != "Shared" {
		return false
	}
	if sw, ok := attrs["preInstalledSw"]; ok && sw != "NA" {
		return false
	}
	if status, ok := attrs["capacitystatus"]; ok && status != "Used" {
		return false
	}
	return true
}

// extractPrices walks the products in key order and keeps the first on-demand price per wanted SKU.
func extractPrices(offers offerFile, skus []string, location string) map[string]*float64 {
	wanted := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		wanted[sku] = struct{}{}
	}

	found := make(map[string]*float64, len(skus))
	for _, key := range sortedKeys(offers.Products) {
		product := offers.Products[key]
		instanceType := product.Attributes["instanceType"]
		if _, ok := wanted[instanceType]; !ok {
			continue
		}
		if _, done := found[instanceType]; done {
			continue
		}
		if !product.matches(location) {
			continue
		}
		if price, ok := firstUSDPrice(offers.Terms.OnDemand[key]); ok {
			found[instanceType] = &price
		}
	}
	return found
}

func firstUSDPrice(terms map[string]offerTerm) (float64, bool) {
	for _, termKey := range sortedKeys(terms) {
		dims := terms[termKey].PriceDimensions
		for _, dimKey := range sortedKeys(dims) {
			raw, ok := dims[dimKey].PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil || price <= 0 {
				continue
			}
			return price, true
		}
	}
	return 0, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
