package utils

import (
	"strings"
)

// locationAliases maps canonical Addis Ababa stop names to the spellings
// tenants actually type. Keys are lowercase canonical names from the fare
// table; values include transliteration variants.
var locationAliases = map[string][]string{
	"bole":        {"bole", "bole medhanealem", "bole road", "airport road"},
	"piassa":      {"piassa", "piazza", "piasa"},
	"megenagna":   {"megenagna", "meganagna", "megenania"},
	"mexico":      {"mexico", "mexico square", "mexiko"},
	"kazanchis":   {"kazanchis", "kazanches", "casanchis"},
	"merkato":     {"merkato", "mercato", "markato"},
	"cmc":         {"cmc", "c.m.c"},
	"ayat":        {"ayat", "ayat village"},
	"gerji":       {"gerji", "gurji"},
	"sarbet":      {"sarbet", "sar bet"},
	"arat kilo":   {"arat kilo", "4 kilo", "aratkilo"},
	"sidist kilo": {"sidist kilo", "6 kilo", "sidistkilo"},
	"stadium":     {"stadium", "stadiam"},
	"saris":       {"saris", "sarris"},
	"kality":      {"kality", "kaliti"},
	"lideta":      {"lideta", "lideta condominium"},
	"lebu":        {"lebu", "lebu mebrat"},
	"jemo":        {"jemo", "jemo 1", "jemo condominium"},
	"summit":      {"summit", "summit condominium"},
	"tor hailoch": {"tor hailoch", "torhailoch", "tor hayloch"},
}

// FuzzyMatchLocation reports whether a free-text location refers to the
// given canonical stop name. Exact and substring matches pass first, then
// the alias table.
func FuzzyMatchLocation(query, stop string) bool {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	stopLower := strings.ToLower(strings.TrimSpace(stop))
	if queryLower == "" || stopLower == "" {
		return false
	}

	if queryLower == stopLower {
		return true
	}
	if strings.Contains(queryLower, stopLower) || strings.Contains(stopLower, queryLower) {
		return true
	}

	aliases, ok := locationAliases[stopLower]
	if !ok {
		return false
	}
	for _, alias := range aliases {
		if strings.Contains(queryLower, alias) {
			return true
		}
	}
	return false
}

// NormalizeLocation maps a free-text location to its canonical stop name
// when an alias matches; otherwise it returns the trimmed input unchanged.
func NormalizeLocation(location string) string {
	locationLower := strings.ToLower(strings.TrimSpace(location))

	for canonical, aliases := range locationAliases {
		for _, alias := range aliases {
			if locationLower == alias {
				return strings.Title(canonical)
			}
		}
	}

	return strings.TrimSpace(location)
}

// amenityAliases groups the spellings landlords and tenants use for the
// same amenity in local listings.
var amenityAliases = map[string][]string{
	"wifi":      {"wifi", "wi-fi", "internet", "broadband"},
	"parking":   {"parking", "car park", "covered parking", "garage"},
	"security":  {"security", "24-hour security", "24hr security", "guard", "zebegna"},
	"water":     {"water tank", "water reservoir", "backup water", "tanker"},
	"generator": {"generator", "backup power", "backup generator"},
	"furnished": {"furnished", "fully furnished", "semi-furnished", "furniture"},
	"balcony":   {"balcony", "terrace", "veranda"},
	"kitchen":   {"kitchen", "open kitchen", "closed kitchen"},
	"elevator":  {"elevator", "lift"},
	"garden":    {"garden", "yard", "compound"},
}

// FuzzyMatchAmenity reports whether a requested amenity matches a listed
// amenity, tolerating the alias spellings above.
func FuzzyMatchAmenity(searchTerm, amenity string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	amenityLower := strings.ToLower(strings.TrimSpace(amenity))
	if searchLower == "" || amenityLower == "" {
		return false
	}

	if searchLower == amenityLower {
		return true
	}
	if strings.Contains(amenityLower, searchLower) || strings.Contains(searchLower, amenityLower) {
		return true
	}

	for key, aliases := range amenityAliases {
		if !strings.Contains(searchLower, key) && !containsAny(searchLower, aliases) {
			continue
		}
		if strings.Contains(amenityLower, key) || containsAny(amenityLower, aliases) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
