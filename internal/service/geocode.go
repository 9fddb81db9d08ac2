package service

import (
	"log"

	"core/internal/faredata"
	"core/internal/utils"
)

// Default coordinates used when a location cannot be resolved
// (Addis Ababa center fallback).
const (
	defaultLat = 9.0
	defaultLon = 38.7
)

// Coordinates is a resolved location. Approximate marks the city-center
// fallback.
type Coordinates struct {
	Lat         float64
	Lon         float64
	Approximate bool
}

// Geocoder resolves free-text locations to coordinates by matching against
// the fare table's route endpoints. It never fails: unknown locations
// resolve to the city-center fallback.
type Geocoder struct {
	table *faredata.Table
}

// NewGeocoder creates a geocoder backed by the given fare table.
func NewGeocoder(table *faredata.Table) *Geocoder {
	return &Geocoder{table: table}
}

// Resolve infers coordinates for a location by averaging the coordinates of
// matching fare-table endpoints.
func (g *Geocoder) Resolve(location string) Coordinates {
	coords := g.table.EndpointCoords(location)
	if len(coords) == 0 {
		// Retry with the canonical spelling; tenants often use alias forms.
		if normalized := utils.NormalizeLocation(location); normalized != location {
			coords = g.table.EndpointCoords(normalized)
		}
	}
	if len(coords) == 0 {
		// Last attempt: alias-aware fuzzy match against every stop name,
		// catching phrases like "near piazza roundabout".
		coords = g.fuzzyEndpointCoords(location)
	}
	if len(coords) == 0 {
		log.Printf("Warning: could not resolve location %q, using city-center fallback", location)
		return Coordinates{Lat: defaultLat, Lon: defaultLon, Approximate: true}
	}

	var sumLat, sumLon float64
	for _, c := range coords {
		sumLat += c[0]
		sumLon += c[1]
	}
	n := float64(len(coords))
	return Coordinates{Lat: sumLat / n, Lon: sumLon / n}
}

func (g *Geocoder) fuzzyEndpointCoords(location string) [][2]float64 {
	var coords [][2]float64
	seen := make(map[string]bool)
	for _, r := range g.table.Routes() {
		if utils.FuzzyMatchLocation(location, r.Source) && !seen[r.Source] {
			seen[r.Source] = true
			coords = append(coords, [2]float64{r.SourceLat, r.SourceLon})
		}
		if utils.FuzzyMatchLocation(location, r.Destination) && !seen[r.Destination] {
			seen[r.Destination] = true
			coords = append(coords, [2]float64{r.DestLat, r.DestLon})
		}
	}
	return coords
}
