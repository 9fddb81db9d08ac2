package faredata

import (
	"math"
	"testing"
)

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("failed to load embedded fare table: %v", err)
	}
	if len(table.Routes()) == 0 {
		t.Fatal("expected non-empty fare table")
	}
	for _, r := range table.Routes() {
		if r.Source == "" || r.Destination == "" {
			t.Errorf("route with empty endpoint: %+v", r)
		}
		if r.Price <= 0 || r.Kilometer <= 0 {
			t.Errorf("route %s -> %s has non-positive fare or distance", r.Source, r.Destination)
		}
	}
}

func TestMatchByName(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("failed to load fare table: %v", err)
	}

	tests := []struct {
		name        string
		origin      string
		destination string
		wantFound   bool
		wantFare    float64
	}{
		{"exact match", "Bole", "Piassa", true, 15.0},
		{"case insensitive", "bole", "piassa", true, 15.0},
		{"reverse direction", "Piassa", "Bole", true, 15.0},
		{"substring query", "Bole Road", "Piassa area", true, 15.0},
		{"unknown corridor", "Gondar", "Bahir Dar", false, 0},
		{"empty origin", "", "Piassa", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := table.MatchByName(tt.origin, tt.destination)
			if ok != tt.wantFound {
				t.Fatalf("MatchByName(%q, %q) found = %v, want %v", tt.origin, tt.destination, ok, tt.wantFound)
			}
			if ok && r.Price != tt.wantFare {
				t.Errorf("fare = %v, want %v", r.Price, tt.wantFare)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	table := NewTable([]Route{
		{Source: "Bole", Destination: "Megenagna", Price: 10, Kilometer: 4.1,
			SourceLat: 8.9936, SourceLon: 38.7873, DestLat: 9.0204, DestLon: 38.8011},
		{Source: "Saris", Destination: "Kality", Price: 10, Kilometer: 5.6,
			SourceLat: 8.9550, SourceLon: 38.7620, DestLat: 8.9080, DestLon: 38.7550},
	})

	// Trip starting near Bole and ending near Megenagna must pick the first row.
	r, ok := table.Nearest(8.994, 38.787, 9.021, 38.800)
	if !ok {
		t.Fatal("expected a nearest route")
	}
	if r.Source != "Bole" {
		t.Errorf("nearest route = %s -> %s, want Bole -> Megenagna", r.Source, r.Destination)
	}

	// Trip in the south picks the Saris corridor.
	r, ok = table.Nearest(8.956, 38.761, 8.910, 38.756)
	if !ok {
		t.Fatal("expected a nearest route")
	}
	if r.Source != "Saris" {
		t.Errorf("nearest route = %s -> %s, want Saris -> Kality", r.Source, r.Destination)
	}

	empty := NewTable(nil)
	if _, ok := empty.Nearest(9, 38.7, 9, 38.8); ok {
		t.Error("empty table must report no nearest route")
	}
}

func TestEndpointCoords(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("failed to load fare table: %v", err)
	}

	coords := table.EndpointCoords("Bole")
	if len(coords) == 0 {
		t.Fatal("expected coordinates for Bole")
	}
	for _, c := range coords {
		if c[0] < 8.8 || c[0] > 9.2 || c[1] < 38.6 || c[1] > 38.9 {
			t.Errorf("coordinate %v outside Addis Ababa bounds", c)
		}
	}

	if got := table.EndpointCoords("Atlantis"); got != nil {
		t.Errorf("expected no coordinates for unknown location, got %v", got)
	}
}

func TestHaversine(t *testing.T) {
	// Bole to Piassa is roughly 6 km as the crow flies.
	d := Haversine(8.9936, 38.7873, 9.0348, 38.7500)
	if d < 5 || d > 7 {
		t.Errorf("Bole-Piassa distance = %.2f km, want ~6 km", d)
	}

	if d := Haversine(9.0, 38.7, 9.0, 38.7); math.Abs(d) > 1e-9 {
		t.Errorf("zero-distance trip returned %v", d)
	}
}
