package service

import (
	"context"
	"log"
	"math/rand"
	"time"

	"core/internal/config"
	"core/internal/model"
)

// PropertySearcher is the inventory query surface the resolver depends on.
type PropertySearcher interface {
	Search(ctx context.Context, q SearchQuery) ([]model.Property, error)
}

// PropertyIndexer receives resolved candidates for background indexing.
type PropertyIndexer interface {
	IndexProperties(ctx context.Context, properties []model.Property) int
}

// SearchInput carries the tenant constraints a resolution run starts from.
type SearchInput struct {
	Location   string
	Salary     float64
	HouseType  string
	FamilySize int
	Amenities  []string
	Lat        float64
	Lon        float64
}

// searchTier builds one broadening step's query from the input. Tiers run in
// order; each runs only while the running unique-candidate count is below
// the minimum threshold. Tiers marked sample return a random sample of their
// results rather than the service-ordered prefix.
type searchTier struct {
	name   string
	sample bool
	build  func(in SearchInput) SearchQuery
}

// SearchResolver finds candidate properties through cascading fallback
// tiers, broadening the query until enough candidates are found or all
// tiers are exhausted.
type SearchResolver struct {
	searcher PropertySearcher
	cfg      config.SearchConfig
	tiers    []searchTier
	indexer  PropertyIndexer

	// shuffleFunc allows test injection; defaults to rand.Shuffle.
	shuffleFunc func(n int, swap func(i, j int))
}

// NewSearchResolver creates a resolver over the given inventory searcher.
func NewSearchResolver(searcher PropertySearcher, cfg config.SearchConfig) *SearchResolver {
	return &SearchResolver{
		searcher:    searcher,
		cfg:         cfg,
		tiers:       defaultTiers(),
		shuffleFunc: rand.Shuffle,
	}
}

// WithIndexer makes the resolver feed resolved candidates to the semantic
// index in the background.
func (r *SearchResolver) WithIndexer(indexer PropertyIndexer) *SearchResolver {
	r.indexer = indexer
	return r
}

// defaultTiers returns the broadening ladder. The price bands are fractions
// of the tenant's salary; later tiers drop the house-type, amenity, and
// finally the location constraints.
func defaultTiers() []searchTier {
	return []searchTier{
		{
			name: "narrow",
			build: func(in SearchInput) SearchQuery {
				return SearchQuery{
					Location:  in.Location,
					MinPrice:  f64(0.2 * in.Salary),
					MaxPrice:  f64(0.3 * in.Salary),
					HouseType: str(in.HouseType),
					Bedrooms:  intp(in.FamilySize),
					Amenities: in.Amenities,
					UserLat:   f64(in.Lat),
					UserLon:   f64(in.Lon),
					Status:    model.StatusApproved,
				}
			},
		},
		{
			name: "wider price",
			build: func(in SearchInput) SearchQuery {
				return SearchQuery{
					Location: in.Location,
					MinPrice: f64(0.1 * in.Salary),
					MaxPrice: f64(0.5 * in.Salary),
					UserLat:  f64(in.Lat),
					UserLon:  f64(in.Lon),
					Status:   model.StatusApproved,
				}
			},
		},
		{
			name:   "any location",
			sample: true,
			build: func(in SearchInput) SearchQuery {
				return SearchQuery{
					MinPrice: f64(0.1 * in.Salary),
					MaxPrice: f64(0.6 * in.Salary),
					Status:   model.StatusApproved,
				}
			},
		},
		{
			name:   "wider price, any location",
			sample: true,
			build: func(in SearchInput) SearchQuery {
				return SearchQuery{
					MinPrice: f64(0.1 * in.Salary),
					MaxPrice: f64(0.7 * in.Salary),
					Status:   model.StatusApproved,
				}
			},
		},
		{
			name:   "any price",
			sample: true,
			build: func(in SearchInput) SearchQuery {
				return SearchQuery{Status: model.StatusApproved}
			},
		},
	}
}

// Resolve runs the tiers in order, merging results deduplicated by property
// ID, until the minimum candidate count is met or all tiers are exhausted.
// A tier's own failure is logged and skipped. Never returns an error.
func (r *SearchResolver) Resolve(ctx context.Context, in SearchInput) []model.Property {
	seen := make(map[string]bool)
	candidates := make([]model.Property, 0, r.cfg.MaxResults)

	for _, tier := range r.tiers {
		if len(candidates) >= r.cfg.MinResults {
			break
		}

		results, err := r.searcher.Search(ctx, tier.build(in))
		if err != nil {
			log.Printf("Warning: search tier %q failed, continuing: %v", tier.name, err)
			continue
		}

		// Location-agnostic tiers contribute a random sample, not whatever
		// prefix the inventory service happens to order first.
		if tier.sample {
			r.shuffleFunc(len(results), func(i, j int) {
				results[i], results[j] = results[j], results[i]
			})
		}

		for _, p := range results {
			if len(candidates) >= r.cfg.MaxResults {
				break
			}
			if !p.Eligible() || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}

	// Index candidates asynchronously (don't block the pipeline)
	if r.indexer != nil && len(candidates) > 0 {
		snapshot := make([]model.Property, len(candidates))
		copy(snapshot, candidates)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			r.indexer.IndexProperties(ctx, snapshot)
		}()
	}

	return candidates
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func intp(v int) *int        { return &v }
