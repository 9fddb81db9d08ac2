package model

// RecommendationRequest represents an incoming recommendation query
type RecommendationRequest struct {
	JobSchoolLocation  string   `json:"job_school_location" binding:"required"`
	Salary             float64  `json:"salary" binding:"required,gt=0"`
	HouseType          string   `json:"house_type" binding:"required"`
	FamilySize         int      `json:"family_size" binding:"required,gt=0"`
	PreferredAmenities []string `json:"preferred_amenities"`
	Language           string   `json:"language"` // en, am, or
}

// Recommendation is one enriched candidate in the terminal result list.
type Recommendation struct {
	PropertyID         string   `json:"property_id"`
	Title              string   `json:"title"`
	Location           string   `json:"location"`
	Price              float64  `json:"price"`
	TransportCost      float64  `json:"transport_cost"`
	AffordabilityScore float64  `json:"affordability_score"`
	Reason             string   `json:"reason"`
	MapURL             string   `json:"map_url"`
	Images             []string `json:"images,omitempty"`
	Details            JSONMap  `json:"details,omitempty"`
	Route              JSONMap  `json:"route,omitempty"`
}

// RecommendationResponse represents the recommendation endpoint response
type RecommendationResponse struct {
	Recommendations       []Recommendation `json:"recommendations"`
	TotalBudgetSuggestion float64          `json:"total_budget_suggestion"`
}

// FeedbackRequest represents tenant feedback on a recommended property
type FeedbackRequest struct {
	TenantPreferenceID int64  `json:"tenant_preference_id" binding:"required"`
	PropertyID         string `json:"property_id" binding:"required"`
	Liked              *bool  `json:"liked" binding:"required"`
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Message string `json:"message"`
}

// PropertySearchRequest represents a semantic property search query
type PropertySearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// PropertySearchResponse represents a semantic property search response
type PropertySearchResponse struct {
	Results []DocumentMatch `json:"results"`
	Took    int64           `json:"took_ms"`
}

// DocumentMatch is one indexed document returned by semantic retrieval.
type DocumentMatch struct {
	RefID    string  `json:"ref_id" db:"ref_id"`
	Kind     string  `json:"kind" db:"kind"` // property or route
	Content  string  `json:"content" db:"content"`
	Distance float64 `json:"distance" db:"distance"`
}
