package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"core/internal/middleware"
	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// RecommendationStore is the persistence surface the handler depends on.
type RecommendationStore interface {
	SaveTenantPreference(ctx context.Context, pref *model.TenantPreference) (int64, error)
	ListRecommendationLogs(ctx context.Context, prefID int64) ([]model.RecommendationLog, error)
	InsertFeedbackLog(ctx context.Context, fb model.Feedback) error
}

// PipelineRunner executes one recommendation pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context, st *service.PipelineState) ([]model.Recommendation, error)
}

// RecommendationHandler handles recommendation-related HTTP requests
type RecommendationHandler struct {
	store RecommendationStore
	agent PipelineRunner
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(store RecommendationStore, agent PipelineRunner) *RecommendationHandler {
	return &RecommendationHandler{store: store, agent: agent}
}

// Create handles POST /api/v1/recommendations
func (h *RecommendationHandler) Create(c *gin.Context) {
	var req model.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	userID := c.GetString(middleware.ContextUserID)
	ctx := c.Request.Context()

	// The preference is always saved, even when the pipeline later fails;
	// feedback correlates against this row.
	prefID, err := h.store.SaveTenantPreference(ctx, &model.TenantPreference{
		UserID:             userID,
		JobSchoolLocation:  req.JobSchoolLocation,
		Salary:             req.Salary,
		HouseType:          req.HouseType,
		FamilySize:         req.FamilySize,
		PreferredAmenities: req.PreferredAmenities,
	})
	if err != nil {
		log.Printf("Failed to save tenant preference for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed"})
		return
	}

	recommendations, err := h.agent.Run(ctx, &service.PipelineState{
		TenantPreferenceID: prefID,
		UserID:             userID,
		Location:           req.JobSchoolLocation,
		Salary:             req.Salary,
		HouseType:          req.HouseType,
		FamilySize:         req.FamilySize,
		PreferredAmenities: req.PreferredAmenities,
		Language:           req.Language,
	})
	if err != nil {
		log.Printf("Recommendation pipeline failed for preference %d: %v", prefID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed"})
		return
	}

	log.Printf("Generated %d recommendations for preference %d", len(recommendations), prefID)
	c.JSON(http.StatusOK, model.RecommendationResponse{
		Recommendations:       recommendations,
		TotalBudgetSuggestion: req.Salary * 0.3,
	})
}

// ListSaved handles GET /api/v1/recommendations/:id
func (h *RecommendationHandler) ListSaved(c *gin.Context) {
	prefID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preference id"})
		return
	}

	logs, err := h.store.ListRecommendationLogs(c.Request.Context(), prefID)
	if err != nil {
		log.Printf("Failed to list recommendation logs for preference %d: %v", prefID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recommendations"})
		return
	}

	results := make([]json.RawMessage, 0, len(logs))
	for _, entry := range logs {
		results = append(results, entry.Recommendation)
	}
	c.JSON(http.StatusOK, results)
}

// Feedback handles POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	fb := model.Feedback{
		TenantPreferenceID: req.TenantPreferenceID,
		PropertyID:         req.PropertyID,
		Liked:              *req.Liked,
	}
	if err := h.store.InsertFeedbackLog(c.Request.Context(), fb); err != nil {
		log.Printf("Failed to record feedback for preference %d: %v", req.TenantPreferenceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback"})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{Message: "Feedback recorded"})
}
