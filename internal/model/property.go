package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// StatusApproved is the only property status eligible for recommendation.
const StatusApproved = "approved"

// Property represents a rental property candidate returned by the inventory
// search service. The pipeline never mutates these records.
type Property struct {
	ID          string    `json:"id" db:"id"`
	UserID      *string   `json:"user_id,omitempty" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    string    `json:"location" db:"location"`
	Price       float64   `json:"price" db:"price"`
	HouseType   *string   `json:"house_type,omitempty" db:"house_type"`
	Bedrooms    *int      `json:"bedrooms,omitempty" db:"bedrooms"`
	Amenities   JSONArray `json:"amenities,omitempty" db:"amenities"`
	Photos      JSONArray `json:"photos,omitempty" db:"photos"`
	Latitude    *float64  `json:"lat,omitempty" db:"lat"`
	Longitude   *float64  `json:"lon,omitempty" db:"lon"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
}

// Eligible reports whether the property may be recommended.
func (p *Property) Eligible() bool {
	return strings.EqualFold(p.Status, StatusApproved)
}

// HasCoordinates reports whether both latitude and longitude are present.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// TransportCost is the per-candidate commute estimate produced by the
// route-cost resolver.
type TransportCost struct {
	PropertyID  string  `json:"property_id"`
	MonthlyCost float64 `json:"cost"`
	DistanceKm  float64 `json:"distance_km"`
	Fare        float64 `json:"fare"`
	Route       string  `json:"route"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
