package service

import (
	"context"
	"log"
	"math"
	"sort"

	"core/internal/config"
	"core/internal/model"
)

// missingDistanceKm is assumed for candidates without a transport-cost record.
const missingDistanceKm = 5.0

// FeedbackReader reads previously logged feedback for a preference.
type FeedbackReader interface {
	ListFeedback(ctx context.Context, prefID int64) ([]model.Feedback, error)
}

// RankWeights are the criteria weights for one ranking run.
type RankWeights struct {
	Proximity     float64
	Affordability float64
	FamilyFit     float64
}

// Ranker orders candidates by a feedback-adjusted multi-criteria score.
// Lower scores rank higher.
type Ranker struct {
	feedback FeedbackReader
	cfg      config.RankingConfig
	topK     int
}

// NewRanker creates a ranker with the given base weights and result size.
func NewRanker(feedback FeedbackReader, cfg config.RankingConfig, topK int) *Ranker {
	if topK <= 0 {
		topK = 3
	}
	return &Ranker{feedback: feedback, cfg: cfg, topK: topK}
}

// WeightsFor returns the weights for one run: base weights, nudged toward
// proximity when the tenant has liked any prior recommendation. A failed
// feedback read is treated as no feedback, not an error.
func (r *Ranker) WeightsFor(ctx context.Context, prefID int64) RankWeights {
	weights := RankWeights{
		Proximity:     r.cfg.WeightProximity,
		Affordability: r.cfg.WeightAffordability,
		FamilyFit:     r.cfg.WeightFamilyFit,
	}

	feedback, err := r.feedback.ListFeedback(ctx, prefID)
	if err != nil {
		log.Printf("Warning: feedback read failed for preference %d, using base weights: %v", prefID, err)
		return weights
	}

	for _, fb := range feedback {
		if fb.Liked {
			// The weights are deliberately not renormalized; this is a
			// linear nudge, not a probability mix.
			weights.Proximity += 0.1
			weights.Affordability -= 0.05
			weights.FamilyFit -= 0.05
			break
		}
	}
	return weights
}

// Rank returns the top candidates by ascending composite score. Ties keep
// input order (stable sort).
func (r *Ranker) Rank(ctx context.Context, prefID int64, candidates []model.Property, costs []model.TransportCost, salary float64, familySize int) []model.Property {
	if len(candidates) == 0 {
		return []model.Property{}
	}

	weights := r.WeightsFor(ctx, prefID)

	distances := make(map[string]float64, len(costs))
	for _, tc := range costs {
		distances[tc.PropertyID] = tc.DistanceKm
	}

	ranked := make([]model.Property, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return r.score(ranked[i], distances, weights, salary, familySize) <
			r.score(ranked[j], distances, weights, salary, familySize)
	})

	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	return ranked
}

// score computes the composite score: distance, rent-to-salary ratio, and
// bedroom/family-size mismatch, each weighted. Missing distance defaults to
// 5 km; missing bedrooms count as a perfect family fit.
func (r *Ranker) score(p model.Property, distances map[string]float64, w RankWeights, salary float64, familySize int) float64 {
	distance, ok := distances[p.ID]
	if !ok {
		distance = missingDistanceKm
	}

	bedrooms := familySize
	if p.Bedrooms != nil {
		bedrooms = *p.Bedrooms
	}

	return distance*w.Proximity +
		(p.Price/salary)*w.Affordability +
		math.Abs(float64(bedrooms-familySize))*w.FamilyFit
}
