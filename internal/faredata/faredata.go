// Package faredata ships the public-transport fare table for Addis Ababa as
// embedded data. Route cost estimation and location inference both lean on
// this table when live routing data is unavailable or a location only exists
// as free text.
package faredata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

//go:embed fares.json
var faresJSON []byte

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Route is one row of the fare table: a named corridor with its single-trip
// fare, road distance, and the coordinates of both endpoints.
type Route struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price"`
	Kilometer   float64 `json:"kilometer"`
	SourceLat   float64 `json:"source_lat"`
	SourceLon   float64 `json:"source_lon"`
	DestLat     float64 `json:"dest_lat"`
	DestLon     float64 `json:"dest_lon"`
}

// Table holds the loaded fare table.
type Table struct {
	routes []Route
}

// Load parses the embedded fare table.
func Load() (*Table, error) {
	var routes []Route
	if err := json.Unmarshal(faresJSON, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse embedded fare table: %w", err)
	}
	return &Table{routes: routes}, nil
}

// NewTable builds a table from explicit routes. Used by tests.
func NewTable(routes []Route) *Table {
	return &Table{routes: routes}
}

// Routes returns all fare table rows.
func (t *Table) Routes() []Route {
	return t.routes
}

// MatchByName finds the first route whose source or destination name contains
// (or is contained by) both the origin and destination strings,
// case-insensitively. Returns false when no row matches.
func (t *Table) MatchByName(origin, destination string) (Route, bool) {
	origin = strings.ToLower(strings.TrimSpace(origin))
	destination = strings.ToLower(strings.TrimSpace(destination))
	if origin == "" || destination == "" {
		return Route{}, false
	}

	for _, r := range t.routes {
		src := strings.ToLower(r.Source)
		dst := strings.ToLower(r.Destination)
		forward := nameMatches(src, origin) && nameMatches(dst, destination)
		reverse := nameMatches(src, destination) && nameMatches(dst, origin)
		if forward || reverse {
			return r, true
		}
	}
	return Route{}, false
}

// Nearest returns the route whose endpoints best bracket the given trip: the
// row minimizing haversine(origin, row source) + haversine(point, row
// destination). Returns false only when the table is empty.
func (t *Table) Nearest(originLat, originLon, lat, lon float64) (Route, bool) {
	if len(t.routes) == 0 {
		return Route{}, false
	}

	best := t.routes[0]
	bestDist := math.MaxFloat64
	for _, r := range t.routes {
		d := Haversine(originLat, originLon, r.SourceLat, r.SourceLon) +
			Haversine(lat, lon, r.DestLat, r.DestLon)
		if d < bestDist {
			bestDist = d
			best = r
		}
	}
	return best, true
}

// EndpointCoords collects the coordinates of every endpoint whose name
// matches the given location text. The same stop can appear on several rows;
// each occurrence contributes once.
func (t *Table) EndpointCoords(location string) [][2]float64 {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return nil
	}

	var coords [][2]float64
	seen := make(map[string]bool)
	for _, r := range t.routes {
		if nameMatches(strings.ToLower(r.Source), location) && !seen[strings.ToLower(r.Source)] {
			seen[strings.ToLower(r.Source)] = true
			coords = append(coords, [2]float64{r.SourceLat, r.SourceLon})
		}
		if nameMatches(strings.ToLower(r.Destination), location) && !seen[strings.ToLower(r.Destination)] {
			seen[strings.ToLower(r.Destination)] = true
			coords = append(coords, [2]float64{r.DestLat, r.DestLon})
		}
	}
	return coords
}

// nameMatches reports whether a lowercased stop name and a lowercased query
// overlap by substring in either direction.
func nameMatches(stop, query string) bool {
	return strings.Contains(stop, query) || strings.Contains(query, stop)
}

// Haversine returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
