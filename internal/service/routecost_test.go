package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"core/internal/faredata"
	"core/internal/model"
)

type fakeMatrix struct {
	results []MatrixResult
	err     error
	calls   int
	lastN   int
}

func (f *fakeMatrix) Matrix(_ context.Context, _, _ float64, destinations [][2]float64) ([]MatrixResult, error) {
	f.calls++
	f.lastN = len(destinations)
	if f.err != nil {
		return nil, f.err
	}
	if f.results != nil {
		return f.results, nil
	}
	results := make([]MatrixResult, len(destinations))
	for i := range results {
		results[i] = MatrixResult{DistanceMeters: 4100}
	}
	return results, nil
}

func testFareTable() *faredata.Table {
	return faredata.NewTable([]faredata.Route{
		{Source: "Bole", Destination: "Megenagna", Price: 10, Kilometer: 4.1,
			SourceLat: 8.9936, SourceLon: 38.7873, DestLat: 9.0204, DestLon: 38.8011},
		{Source: "Saris", Destination: "Kality", Price: 12, Kilometer: 5.6,
			SourceLat: 8.9550, SourceLon: 38.7620, DestLat: 8.9080, DestLon: 38.7550},
	})
}

func propertyAt(id, location string, lat, lon float64) model.Property {
	return model.Property{
		ID: id, Title: "Listing " + id, Location: location, Price: 1500,
		Latitude: &lat, Longitude: &lon, Status: model.StatusApproved,
	}
}

func TestRouteCost_NameMatchedFare(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	origin := Coordinates{Lat: 8.9936, Lon: 38.7873}
	costs := resolver.Resolve(context.Background(), origin, "Bole",
		[]model.Property{propertyAt("a", "Megenagna", 9.0204, 38.8011)})

	if len(costs) != 1 {
		t.Fatalf("expected 1 cost record, got %d", len(costs))
	}
	tc := costs[0]
	if tc.Fare != 10 {
		t.Errorf("fare = %v, want 10 (name-matched table row)", tc.Fare)
	}
	if tc.MonthlyCost != 400 {
		t.Errorf("monthly cost = %v, want 400 (10 x 2 x 20)", tc.MonthlyCost)
	}
	if tc.DistanceKm != 4.1 {
		t.Errorf("distance = %v km, want 4.1", tc.DistanceKm)
	}
	if tc.Route != "Bole to Megenagna" {
		t.Errorf("route = %q, want %q", tc.Route, "Bole to Megenagna")
	}
}

func TestRouteCost_NearestRouteFallback(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	// No table row names match, but the trip hugs the Saris-Kality corridor.
	origin := Coordinates{Lat: 8.956, Lon: 38.761}
	costs := resolver.Resolve(context.Background(), origin, "Gotera",
		[]model.Property{propertyAt("a", "Akaki", 8.909, 38.756)})

	if len(costs) != 1 {
		t.Fatalf("expected 1 cost record, got %d", len(costs))
	}
	if costs[0].Fare != 12 {
		t.Errorf("fare = %v, want 12 (nearest-route row)", costs[0].Fare)
	}
}

func TestRouteCost_DefaultFareOnEmptyTable(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, faredata.NewTable(nil))

	origin := Coordinates{Lat: 9.0, Lon: 38.7}
	costs := resolver.Resolve(context.Background(), origin, "Bole",
		[]model.Property{propertyAt("a", "Megenagna", 9.0204, 38.8011)})

	if len(costs) != 1 {
		t.Fatalf("expected 1 cost record, got %d", len(costs))
	}
	if costs[0].Fare != 10.0 {
		t.Errorf("fare = %v, want the 10.0 default", costs[0].Fare)
	}
}

func TestRouteCost_MatrixFailureUsesFallback(t *testing.T) {
	matrix := &fakeMatrix{err: errors.New("service unavailable")}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	origin := Coordinates{Lat: 8.9936, Lon: 38.7873}
	costs := resolver.Resolve(context.Background(), origin, "Bole", []model.Property{
		propertyAt("a", "Megenagna", 9.0204, 38.8011),
		propertyAt("b", "Gerji", 8.9990, 38.8180),
	})

	if len(costs) != 2 {
		t.Fatalf("expected 2 fallback records, got %d", len(costs))
	}
	for _, tc := range costs {
		if tc.MonthlyCost != 50.0 || tc.DistanceKm != 5.0 {
			t.Errorf("fallback cost = %v/%v km, want 50.0/5.0", tc.MonthlyCost, tc.DistanceKm)
		}
	}
}

func TestRouteCost_SkipsInvalidCoordinates(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	noCoords := model.Property{ID: "x", Title: "No coords", Location: "Bole", Status: model.StatusApproved}
	badLat := propertyAt("y", "Bole", 120.0, 38.8)

	origin := Coordinates{Lat: 9.0, Lon: 38.7}
	costs := resolver.Resolve(context.Background(), origin, "Bole", []model.Property{
		noCoords, badLat, propertyAt("a", "Megenagna", 9.0204, 38.8011),
	})

	if len(costs) != 1 {
		t.Fatalf("expected 1 cost record for the single valid candidate, got %d", len(costs))
	}
	if costs[0].PropertyID != "a" {
		t.Errorf("cost record for %q, want a", costs[0].PropertyID)
	}
}

func TestRouteCost_TruncatesToProviderLimit(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	var candidates []model.Property
	for i := 0; i < 14; i++ {
		candidates = append(candidates, propertyAt(fmt.Sprintf("p%d", i), "Megenagna", 9.02, 38.80))
	}

	origin := Coordinates{Lat: 9.0, Lon: 38.7}
	costs := resolver.Resolve(context.Background(), origin, "Bole", candidates)

	if matrix.lastN != 10 {
		t.Errorf("matrix called with %d destinations, want the 10 limit", matrix.lastN)
	}
	if len(costs) != 10 {
		t.Errorf("expected 10 cost records, got %d", len(costs))
	}
}

func TestRouteCost_EmptyInput(t *testing.T) {
	matrix := &fakeMatrix{}
	resolver := NewRouteCostResolver(matrix, testFareTable())

	costs := resolver.Resolve(context.Background(), Coordinates{Lat: 9, Lon: 38.7}, "Bole", nil)

	if len(costs) != 0 {
		t.Errorf("expected no cost records, got %d", len(costs))
	}
	if matrix.calls != 0 {
		t.Errorf("matrix must not be called without valid destinations, got %d calls", matrix.calls)
	}
}
