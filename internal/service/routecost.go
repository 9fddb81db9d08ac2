package service

import (
	"context"
	"fmt"
	"log"

	"core/internal/faredata"
	"core/internal/model"
)

// Route-cost defaults and limits.
const (
	maxMatrixDestinations = 10 // provider limit on destinations per call

	defaultFare       = 10.0 // single-trip fare when no table row matches
	fallbackCost      = 50.0 // monthly cost when the matrix call fails
	fallbackDistance  = 5.0  // distance in km when the matrix call fails
	roundTripFactor   = 2
	workingDaysPerMon = 20
)

// RouteMatrix is the routing service surface the resolver depends on.
type RouteMatrix interface {
	Matrix(ctx context.Context, originLat, originLon float64, destinations [][2]float64) ([]MatrixResult, error)
}

// RouteCostResolver estimates monthly commute cost per candidate using the
// routing matrix and the historical fare table. It never fails: every
// failure path terminates in a documented default.
type RouteCostResolver struct {
	matrix RouteMatrix
	table  *faredata.Table
}

// NewRouteCostResolver creates a route-cost resolver.
func NewRouteCostResolver(matrix RouteMatrix, table *faredata.Table) *RouteCostResolver {
	return &RouteCostResolver{matrix: matrix, table: table}
}

// Resolve returns one transport-cost record per candidate with valid
// coordinates, at most 10. Candidates beyond the provider limit or with
// missing/out-of-range coordinates are skipped; downstream stages apply
// their own defaults for those.
func (r *RouteCostResolver) Resolve(ctx context.Context, origin Coordinates, originName string, candidates []model.Property) []model.TransportCost {
	routable := make([]model.Property, 0, len(candidates))
	destinations := make([][2]float64, 0, len(candidates))
	for _, p := range candidates {
		if !p.HasCoordinates() || !validCoordinates(*p.Latitude, *p.Longitude) {
			continue
		}
		if len(routable) >= maxMatrixDestinations {
			log.Printf("Warning: dropping destinations beyond provider limit of %d", maxMatrixDestinations)
			break
		}
		routable = append(routable, p)
		destinations = append(destinations, [2]float64{*p.Latitude, *p.Longitude})
	}
	if len(routable) == 0 {
		return []model.TransportCost{}
	}

	results, err := r.matrix.Matrix(ctx, origin.Lat, origin.Lon, destinations)
	if err != nil || len(results) != len(routable) {
		if err != nil {
			log.Printf("Warning: matrix call failed, using fallback fares: %v", err)
		} else {
			log.Printf("Warning: matrix returned %d distances for %d destinations, using fallback fares", len(results), len(routable))
		}
		costs := make([]model.TransportCost, 0, len(routable))
		for _, p := range routable {
			costs = append(costs, model.TransportCost{
				PropertyID:  p.ID,
				MonthlyCost: fallbackCost,
				DistanceKm:  fallbackDistance,
				Route:       routeLabel(originName, p.Location),
			})
		}
		return costs
	}

	costs := make([]model.TransportCost, 0, len(routable))
	for i, p := range routable {
		fare := r.lookupFare(origin, originName, p)
		costs = append(costs, model.TransportCost{
			PropertyID:  p.ID,
			MonthlyCost: fare * roundTripFactor * workingDaysPerMon,
			DistanceKm:  results[i].DistanceMeters / 1000,
			Fare:        fare,
			Route:       routeLabel(originName, p.Location),
		})
	}
	return costs
}

// lookupFare finds the single-trip fare for the commute: name match against
// the fare table first, then nearest-route geographic matching, then the
// flat default.
func (r *RouteCostResolver) lookupFare(origin Coordinates, originName string, p model.Property) float64 {
	if row, ok := r.table.MatchByName(originName, p.Location); ok {
		return row.Price
	}
	if p.HasCoordinates() {
		if row, ok := r.table.Nearest(origin.Lat, origin.Lon, *p.Latitude, *p.Longitude); ok {
			return row.Price
		}
	}
	return defaultFare
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func routeLabel(from, to string) string {
	return fmt.Sprintf("%s to %s", from, to)
}
