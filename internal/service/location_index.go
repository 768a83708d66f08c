package service

import "strings"

// LocationClass is the broad/specific classification of a location string.
type LocationClass int

const (
	LocationUnknown LocationClass = iota
	// LocationBroad is a top-level region (state) or the country itself.
	LocationBroad
	// LocationSpecific is any known city or other precise place.
	LocationSpecific
)

// LocationIndex is the static region→cities reference set. It is built once
// at startup from config and never mutated afterwards, so concurrent reads
// need no locking.
type LocationIndex struct {
	country string
	regions map[string][]string
	lookup  map[string]LocationClass
}

// NewLocationIndex builds the index. Region and city names are matched
// case-insensitively.
func NewLocationIndex(country string, regions map[string][]string) *LocationIndex {
	idx := &LocationIndex{
		country: strings.ToLower(strings.TrimSpace(country)),
		regions: regions,
		lookup:  make(map[string]LocationClass),
	}
	for region, cities := range regions {
		idx.lookup[strings.ToLower(strings.TrimSpace(region))] = LocationBroad
		for _, city := range cities {
			key := strings.ToLower(strings.TrimSpace(city))
			// A name that is both a region and a city stays broad.
			if idx.lookup[key] == LocationUnknown {
				idx.lookup[key] = LocationSpecific
			}
		}
	}
	return idx
}

// Classify reports whether s names a broad region, a specific known place, or
// nothing the index recognizes.
func (idx *LocationIndex) Classify(s string) LocationClass {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return LocationUnknown
	}
	if idx.country != "" && key == idx.country {
		return LocationBroad
	}
	return idx.lookup[key]
}

// IsKnownPlace reports whether s matches any region, city or the country.
func (idx *LocationIndex) IsKnownPlace(s string) bool {
	return idx.Classify(s) != LocationUnknown
}

// defaultRegions is the compiled-in fallback when no region set is configured.
var defaultRegions = map[string][]string{
	"Maharashtra": {"Mumbai", "Pune", "Nagpur", "Nashik", "Thane"},
	"Karnataka":   {"Bengaluru", "Mysuru", "Mangaluru", "Hubballi"},
	"Delhi":       {"New Delhi", "Dwarka", "Rohini"},
	"Gujarat":     {"Ahmedabad", "Surat", "Vadodara", "Rajkot"},
	"Tamil Nadu":  {"Chennai", "Coimbatore", "Madurai"},
	"Telangana":   {"Hyderabad", "Warangal"},
	"West Bengal": {"Kolkata", "Howrah", "Durgapur"},
	"Rajasthan":   {"Jaipur", "Udaipur", "Jodhpur"},
}

// DefaultLocationIndex returns the fallback index used when config supplies
// no region set.
func DefaultLocationIndex(country string) *LocationIndex {
	if country == "" {
		country = "India"
	}
	return NewLocationIndex(country, defaultRegions)
}
