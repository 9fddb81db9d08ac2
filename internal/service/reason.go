package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"core/internal/model"
	"core/internal/utils"
)

// ReasonGenerator is the text-generation surface the enricher depends on.
type ReasonGenerator interface {
	GenerateWithFallback(ctx context.Context, prompt string) (string, error)
}

// LogWriter persists the terminal recommendation log.
type LogWriter interface {
	InsertRecommendationLog(ctx context.Context, prefID int64, recommendation json.RawMessage) error
}

// ReasonEnricher turns ranked candidates into the final enriched records:
// per-candidate justification text, affordability score, and map-tile URL.
// The enriched list is persisted as one recommendation log row; that write's
// failure is the only error this stage surfaces.
type ReasonEnricher struct {
	generator ReasonGenerator
	logs      LogWriter
	mapBase   string
}

// NewReasonEnricher creates an enricher. mapBase is the tile-server base URL.
func NewReasonEnricher(generator ReasonGenerator, logs LogWriter, mapBase string) *ReasonEnricher {
	return &ReasonEnricher{generator: generator, logs: logs, mapBase: mapBase}
}

// Enrich builds the final recommendation records for the ranked candidates
// and persists them. An empty ranked list still persists an empty log entry.
func (e *ReasonEnricher) Enrich(ctx context.Context, st *PipelineState) ([]model.Recommendation, error) {
	costs := make(map[string]model.TransportCost, len(st.TransportCosts))
	for _, tc := range st.TransportCosts {
		costs[tc.PropertyID] = tc
	}

	pref := &model.TenantPreference{
		ID:                 st.TenantPreferenceID,
		UserID:             st.UserID,
		JobSchoolLocation:  st.Location,
		Salary:             st.Salary,
		HouseType:          st.HouseType,
		FamilySize:         st.FamilySize,
		PreferredAmenities: st.PreferredAmenities,
	}

	recommendations := make([]model.Recommendation, 0, len(st.Ranked))
	for i := range st.Ranked {
		p := &st.Ranked[i]

		tc, hasCost := costs[p.ID]
		if !hasCost {
			tc = model.TransportCost{
				PropertyID:  p.ID,
				MonthlyCost: fallbackCost,
				DistanceKm:  fallbackDistance,
				Route:       routeLabel(st.Location, p.Location),
			}
		}

		budget30 := st.Salary * 0.3
		reasonCtx := ReasonContext{
			DistanceKm:           tc.DistanceKm,
			SingleTripFare:       tc.Fare,
			MonthlyTransportCost: tc.MonthlyCost,
			Budget30Percent:      budget30,
			RemainingAfterCosts:  st.Salary - p.Price - tc.MonthlyCost,
			Route:                tc.Route,
			MatchedAmenity:       matchedAmenity(st.PreferredAmenities, p.Amenities),
		}

		var reason string
		raw, err := e.generator.GenerateWithFallback(ctx, BuildReasonPrompt(pref, p, reasonCtx, st.Language))
		if err != nil {
			log.Printf("Warning: reason generation failed for property %s: %v", p.ID, err)
			reason = FailureMessage(st.Language)
		} else {
			reason = normalizeReason(raw)
		}

		rec := model.Recommendation{
			PropertyID:         p.ID,
			Title:              p.Title,
			Location:           p.Location,
			Price:              p.Price,
			TransportCost:      tc.MonthlyCost,
			AffordabilityScore: 1 - p.Price/budget30,
			Reason:             reason,
			Images:             p.Photos,
			Details: model.JSONMap{
				"house_type": p.HouseType,
				"bedrooms":   p.Bedrooms,
				"amenities":  p.Amenities,
			},
			Route: model.JSONMap{
				"route":       tc.Route,
				"distance_km": tc.DistanceKm,
				"fare":        tc.Fare,
			},
		}
		if p.HasCoordinates() {
			rec.MapURL = fmt.Sprintf("%s/tiles/%f/%f/15", e.mapBase, *p.Latitude, *p.Longitude)
		}

		recommendations = append(recommendations, rec)
	}

	payload, err := json.Marshal(recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	if err := e.logs.InsertRecommendationLog(ctx, st.TenantPreferenceID, payload); err != nil {
		return nil, fmt.Errorf("failed to persist recommendation log: %w", err)
	}

	return recommendations, nil
}

// matchedAmenity returns the first preferred amenity present in the listing,
// tolerating the spelling variants local listings use.
func matchedAmenity(preferred, listed []string) string {
	for _, want := range preferred {
		for _, have := range listed {
			if utils.FuzzyMatchAmenity(want, have) {
				return want
			}
		}
	}
	return ""
}

// normalizeReason unwraps model output. Despite the prompt, models sometimes
// return the justification as a JSON object or inside a code fence.
func normalizeReason(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var wrapped struct {
		Reason string `json:"reason"`
	}
	if err := utils.ParseAIJSON(trimmed, &wrapped); err == nil && wrapped.Reason != "" {
		return wrapped.Reason
	}
	return trimmed
}
