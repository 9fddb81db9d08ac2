package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"core/internal/model"

	"github.com/gin-gonic/gin"
)

// DocumentSearcher is the semantic-retrieval surface the handler depends on.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]model.DocumentMatch, error)
}

// PropertySearchHandler handles semantic property search requests
type PropertySearchHandler struct {
	index       DocumentSearcher
	defaultTopK int
}

// NewPropertySearchHandler creates a new property search handler
func NewPropertySearchHandler(index DocumentSearcher, defaultTopK int) *PropertySearchHandler {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &PropertySearchHandler{index: index, defaultTopK: defaultTopK}
}

// Search handles POST /api/v1/properties/search
func (h *PropertySearchHandler) Search(c *gin.Context) {
	var req model.PropertySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.TopK <= 0 {
		req.TopK = h.defaultTopK
	}

	start := time.Now()
	matches, err := h.index.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		log.Printf("Property search failed for query %q: %v", req.Query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Property search failed"})
		return
	}

	c.JSON(http.StatusOK, model.PropertySearchResponse{
		Results: matches,
		Took:    time.Since(start).Milliseconds(),
	})
}
