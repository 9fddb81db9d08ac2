package model

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// TenantPreference is one submitted recommendation request, persisted for
// audit and feedback correlation. Created once, never mutated.
type TenantPreference struct {
	ID                 int64          `json:"id" db:"id"`
	UserID             string         `json:"user_id" db:"user_id"`
	JobSchoolLocation  string         `json:"job_school_location" db:"job_school_location"`
	Salary             float64        `json:"salary" db:"salary"`
	HouseType          string         `json:"house_type" db:"house_type"`
	FamilySize         int            `json:"family_size" db:"family_size"`
	PreferredAmenities pq.StringArray `json:"preferred_amenities" db:"preferred_amenities"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
}

// RecommendationLog is one pipeline execution's output, append-only.
// A row with non-null Recommendation is immutable after creation; a row with
// non-null Feedback and null Recommendation is a feedback-only entry.
type RecommendationLog struct {
	ID                 int64           `json:"id" db:"id"`
	TenantPreferenceID int64           `json:"tenant_preference_id" db:"tenant_preference_id"`
	Recommendation     json.RawMessage `json:"recommendation,omitempty" db:"recommendation"`
	Feedback           json.RawMessage `json:"feedback,omitempty" db:"feedback"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// Feedback is the structured payload of a feedback-only log entry.
type Feedback struct {
	TenantPreferenceID int64  `json:"tenant_preference_id"`
	PropertyID         string `json:"property_id"`
	Liked              bool   `json:"liked"`
}
