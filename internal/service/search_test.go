package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"core/internal/config"
	"core/internal/model"
)

type fakeSearcher struct {
	queries []SearchQuery
	results [][]model.Property
	errs    []error
}

func (f *fakeSearcher) Search(_ context.Context, q SearchQuery) ([]model.Property, error) {
	call := len(f.queries)
	f.queries = append(f.queries, q)
	var err error
	if call < len(f.errs) {
		err = f.errs[call]
	}
	var results []model.Property
	if call < len(f.results) {
		results = f.results[call]
	}
	return results, err
}

func approvedProperty(id string, price float64) model.Property {
	return model.Property{ID: id, Title: "Listing " + id, Location: "Bole", Price: price, Status: model.StatusApproved}
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{MinResults: 3, MaxResults: 10, TopK: 3}
}

func defaultInput() SearchInput {
	return SearchInput{
		Location:   "Bole",
		Salary:     5000,
		HouseType:  "apartment",
		FamilySize: 2,
		Amenities:  []string{"wifi"},
		Lat:        8.99,
		Lon:        38.78,
	}
}

func TestSearchResolver_NarrowTierShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{
		results: [][]model.Property{
			{approvedProperty("a", 1200), approvedProperty("b", 1300), approvedProperty("c", 1400)},
		},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if len(searcher.queries) != 1 {
		t.Errorf("expected only the narrow tier to run, got %d queries", len(searcher.queries))
	}

	q := searcher.queries[0]
	if q.MinPrice == nil || *q.MinPrice != 1000 {
		t.Errorf("narrow tier min price = %v, want 1000", q.MinPrice)
	}
	if q.MaxPrice == nil || *q.MaxPrice != 1500 {
		t.Errorf("narrow tier max price = %v, want 1500", q.MaxPrice)
	}
	if q.HouseType == nil || *q.HouseType != "apartment" {
		t.Errorf("narrow tier house type = %v, want apartment", q.HouseType)
	}
	if q.Status != model.StatusApproved {
		t.Errorf("narrow tier status = %q, want approved", q.Status)
	}
}

func TestSearchResolver_BroadensUntilMinimum(t *testing.T) {
	searcher := &fakeSearcher{
		results: [][]model.Property{
			{approvedProperty("a", 1200)},
			{approvedProperty("b", 2000)},
			{approvedProperty("c", 2500)},
		},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if len(searcher.queries) != 3 {
		t.Fatalf("expected 3 tiers to run, got %d", len(searcher.queries))
	}

	// Broader tiers relax constraints in a fixed order.
	second := searcher.queries[1]
	if second.HouseType != nil || len(second.Amenities) != 0 {
		t.Error("second tier must drop house type and amenity constraints")
	}
	if second.Location != "Bole" {
		t.Errorf("second tier location = %q, want Bole", second.Location)
	}
	if second.MinPrice == nil || *second.MinPrice != 500 || second.MaxPrice == nil || *second.MaxPrice != 2500 {
		t.Errorf("second tier price band = [%v, %v], want [500, 2500]", second.MinPrice, second.MaxPrice)
	}

	third := searcher.queries[2]
	if third.Location != "" {
		t.Errorf("third tier must drop the location match, got %q", third.Location)
	}
	if third.MaxPrice == nil || *third.MaxPrice != 3000 {
		t.Errorf("third tier max price = %v, want 3000", third.MaxPrice)
	}
}

func TestSearchResolver_FinalTierDropsPriceBand(t *testing.T) {
	searcher := &fakeSearcher{}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	resolver.Resolve(context.Background(), defaultInput())

	if len(searcher.queries) != 5 {
		t.Fatalf("expected all 5 tiers to run on empty results, got %d", len(searcher.queries))
	}
	last := searcher.queries[4]
	if last.MinPrice != nil || last.MaxPrice != nil {
		t.Error("final tier must not constrain price")
	}
	if last.Status != model.StatusApproved {
		t.Error("final tier must still require approved status")
	}
}

func TestSearchResolver_DeduplicatesAcrossTiers(t *testing.T) {
	searcher := &fakeSearcher{
		results: [][]model.Property{
			{approvedProperty("a", 1200), approvedProperty("b", 1300)},
			{approvedProperty("a", 1200), approvedProperty("c", 2000)},
		},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 3 {
		t.Fatalf("expected 3 unique candidates, got %d", len(got))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("candidate %d = %s, want %s (tier order preserved)", i, got[i].ID, id)
		}
	}
}

func TestSearchResolver_TierFailureContinues(t *testing.T) {
	searcher := &fakeSearcher{
		errs: []error{errors.New("query timeout"), nil},
		results: [][]model.Property{
			nil,
			{approvedProperty("a", 2000), approvedProperty("b", 2100), approvedProperty("c", 2200)},
		},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates from the second tier, got %d", len(got))
	}
}

func TestSearchResolver_LocationAgnosticTiersSample(t *testing.T) {
	var pool []model.Property
	for i := 0; i < 20; i++ {
		pool = append(pool, approvedProperty(fmt.Sprintf("p%02d", i), 1200))
	}
	searcher := &fakeSearcher{
		results: [][]model.Property{nil, nil, pool},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())
	resolver.shuffleFunc = func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 10 {
		t.Fatalf("expected 10 candidates, got %d", len(got))
	}
	// The reversing shuffle proves sampling runs before the merge: the
	// service-ordered prefix p00..p09 must not come through.
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("p%02d", 19-i)
		if got[i].ID != want {
			t.Fatalf("candidate %d = %s, want %s (tier results must be sampled, not prefix-taken)", i, got[i].ID, want)
		}
	}
}

func TestSearchResolver_LocationTiersNotSampled(t *testing.T) {
	searcher := &fakeSearcher{
		results: [][]model.Property{
			{approvedProperty("a", 1200)},
			{approvedProperty("b", 2000), approvedProperty("c", 2100)},
		},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	shuffles := 0
	resolver.shuffleFunc = func(n int, swap func(i, j int)) { shuffles++ }

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if shuffles != 0 {
		t.Errorf("location-bound tiers must keep the service order, got %d shuffles", shuffles)
	}
}

type signalIndexer struct {
	got chan []model.Property
}

func (s *signalIndexer) IndexProperties(_ context.Context, properties []model.Property) int {
	s.got <- properties
	return len(properties)
}

func TestSearchResolver_IndexesCandidatesInBackground(t *testing.T) {
	searcher := &fakeSearcher{
		results: [][]model.Property{
			{approvedProperty("a", 1200), approvedProperty("b", 1300), approvedProperty("c", 1400)},
		},
	}
	indexer := &signalIndexer{got: make(chan []model.Property, 1)}
	resolver := NewSearchResolver(searcher, testSearchConfig()).WithIndexer(indexer)

	resolver.Resolve(context.Background(), defaultInput())

	indexed := <-indexer.got
	if len(indexed) != 3 {
		t.Errorf("expected 3 candidates handed to the indexer, got %d", len(indexed))
	}
}

func TestSearchResolver_FiltersIneligibleAndCaps(t *testing.T) {
	var many []model.Property
	for i := 0; i < 15; i++ {
		many = append(many, approvedProperty(fmt.Sprintf("p%d", i), 1200))
	}
	pending := model.Property{ID: "pending", Title: "Pending", Location: "Bole", Price: 1200, Status: "pending"}

	searcher := &fakeSearcher{
		results: [][]model.Property{append([]model.Property{pending}, many...)},
	}
	resolver := NewSearchResolver(searcher, testSearchConfig())

	got := resolver.Resolve(context.Background(), defaultInput())

	if len(got) != 10 {
		t.Fatalf("expected the 10-candidate cap, got %d", len(got))
	}
	for _, p := range got {
		if p.ID == "pending" {
			t.Error("ineligible property must be filtered out")
		}
	}
}
