package service

import (
	"context"
	"log"

	"core/internal/model"
)

// PipelineState is the working object threaded through the pipeline stages.
// Each state is exclusively owned by one pipeline run.
type PipelineState struct {
	TenantPreferenceID int64
	UserID             string
	Location           string
	Salary             float64
	HouseType          string
	FamilySize         int
	PreferredAmenities []string
	Language           string

	Coords          Coordinates
	Candidates      []model.Property
	TransportCosts  []model.TransportCost
	Ranked          []model.Property
	Recommendations []model.Recommendation
}

// Stage interfaces. The agent depends on these rather than the concrete
// resolvers so stages can be tested in isolation.

// LocationResolver resolves a free-text location to coordinates.
type LocationResolver interface {
	Resolve(location string) Coordinates
}

// CandidateResolver finds candidate properties for the tenant constraints.
type CandidateResolver interface {
	Resolve(ctx context.Context, in SearchInput) []model.Property
}

// TransportResolver estimates commute cost per candidate.
type TransportResolver interface {
	Resolve(ctx context.Context, origin Coordinates, originName string, candidates []model.Property) []model.TransportCost
}

// CandidateRanker orders candidates and selects the top subset.
type CandidateRanker interface {
	Rank(ctx context.Context, prefID int64, candidates []model.Property, costs []model.TransportCost, salary float64, familySize int) []model.Property
}

// RecommendationEnricher produces and persists the final enriched records.
type RecommendationEnricher interface {
	Enrich(ctx context.Context, st *PipelineState) ([]model.Recommendation, error)
}

// pipelineStage is one named step of the fixed-order pipeline. Only the
// terminal stage may fail the run.
type pipelineStage struct {
	name string
	run  func(ctx context.Context, st *PipelineState) error
}

// RecommendationAgent executes the recommendation pipeline: Geocode, Search,
// RouteCost, Rank, Reason, in fixed order. Every stage before the terminal
// persistence write degrades to an empty output rather than failing the run.
type RecommendationAgent struct {
	stages []pipelineStage
}

// NewRecommendationAgent wires the pipeline stages in execution order.
func NewRecommendationAgent(
	geocoder LocationResolver,
	search CandidateResolver,
	transport TransportResolver,
	ranker CandidateRanker,
	enricher RecommendationEnricher,
) *RecommendationAgent {
	return &RecommendationAgent{
		stages: []pipelineStage{
			{
				name: "geocode",
				run: func(ctx context.Context, st *PipelineState) error {
					st.Coords = geocoder.Resolve(st.Location)
					return nil
				},
			},
			{
				name: "search",
				run: func(ctx context.Context, st *PipelineState) error {
					st.Candidates = search.Resolve(ctx, SearchInput{
						Location:   st.Location,
						Salary:     st.Salary,
						HouseType:  st.HouseType,
						FamilySize: st.FamilySize,
						Amenities:  st.PreferredAmenities,
						Lat:        st.Coords.Lat,
						Lon:        st.Coords.Lon,
					})
					return nil
				},
			},
			{
				name: "route_cost",
				run: func(ctx context.Context, st *PipelineState) error {
					if len(st.Candidates) == 0 {
						st.TransportCosts = []model.TransportCost{}
						return nil
					}
					st.TransportCosts = transport.Resolve(ctx, st.Coords, st.Location, st.Candidates)
					return nil
				},
			},
			{
				name: "rank",
				run: func(ctx context.Context, st *PipelineState) error {
					st.Ranked = ranker.Rank(ctx, st.TenantPreferenceID, st.Candidates, st.TransportCosts, st.Salary, st.FamilySize)
					return nil
				},
			},
			{
				name: "reason",
				run: func(ctx context.Context, st *PipelineState) error {
					recommendations, err := enricher.Enrich(ctx, st)
					if err != nil {
						return err
					}
					st.Recommendations = recommendations
					return nil
				},
			},
		},
	}
}

// Run executes the pipeline over the given state and returns the enriched
// recommendations. Cancellation between stages stops the run before the
// terminal write; a partial result is never persisted.
func (a *RecommendationAgent) Run(ctx context.Context, st *PipelineState) ([]model.Recommendation, error) {
	for _, stage := range a.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stage.run(ctx, st); err != nil {
			log.Printf("Pipeline stage %q failed for preference %d: %v", stage.name, st.TenantPreferenceID, err)
			return nil, err
		}
	}
	return st.Recommendations, nil
}
