package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"core/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveTenantPreference inserts a submitted preference and returns its ID.
func (r *PostgresRepository) SaveTenantPreference(ctx context.Context, pref *model.TenantPreference) (int64, error) {
	query := `
		INSERT INTO tenant_preferences
			(user_id, job_school_location, salary, house_type, family_size, preferred_amenities)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.GetContext(ctx, &id, query,
		pref.UserID, pref.JobSchoolLocation, pref.Salary, pref.HouseType,
		pref.FamilySize, pref.PreferredAmenities)
	if err != nil {
		return 0, fmt.Errorf("failed to save tenant preference: %w", err)
	}
	return id, nil
}

// GetTenantPreference fetches a preference by ID. Returns nil when missing.
func (r *PostgresRepository) GetTenantPreference(ctx context.Context, id int64) (*model.TenantPreference, error) {
	var pref model.TenantPreference
	query := `
		SELECT id, user_id, job_school_location, salary, house_type, family_size,
			preferred_amenities, created_at
		FROM tenant_preferences
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &pref, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant preference: %w", err)
	}
	return &pref, nil
}

// InsertRecommendationLog appends one pipeline result for a preference.
// The recommendation payload may be an empty list; it is persisted regardless.
func (r *PostgresRepository) InsertRecommendationLog(ctx context.Context, prefID int64, recommendation json.RawMessage) error {
	query := `
		INSERT INTO recommendation_logs (tenant_preference_id, recommendation)
		VALUES ($1, $2)
	`
	_, err := r.db.ExecContext(ctx, query, prefID, []byte(recommendation))
	if err != nil {
		return fmt.Errorf("failed to insert recommendation log: %w", err)
	}
	return nil
}

// InsertFeedbackLog appends a feedback-only log entry.
func (r *PostgresRepository) InsertFeedbackLog(ctx context.Context, fb model.Feedback) error {
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	query := `
		INSERT INTO recommendation_logs (tenant_preference_id, feedback)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, fb.TenantPreferenceID, payload); err != nil {
		return fmt.Errorf("failed to insert feedback log: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback entries recorded for a preference,
// oldest first.
func (r *PostgresRepository) ListFeedback(ctx context.Context, prefID int64) ([]model.Feedback, error) {
	query := `
		SELECT feedback
		FROM recommendation_logs
		WHERE tenant_preference_id = $1 AND feedback IS NOT NULL
		ORDER BY created_at ASC
	`
	var rows [][]byte
	if err := r.db.SelectContext(ctx, &rows, query, prefID); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	feedback := make([]model.Feedback, 0, len(rows))
	for _, raw := range rows {
		var fb model.Feedback
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, fmt.Errorf("failed to decode feedback entry: %w", err)
		}
		feedback = append(feedback, fb)
	}
	return feedback, nil
}

// ListRecommendationLogs returns the persisted pipeline results for a
// preference, newest first.
func (r *PostgresRepository) ListRecommendationLogs(ctx context.Context, prefID int64) ([]model.RecommendationLog, error) {
	query := `
		SELECT id, tenant_preference_id, recommendation, feedback, created_at
		FROM recommendation_logs
		WHERE tenant_preference_id = $1 AND recommendation IS NOT NULL
		ORDER BY created_at DESC
	`
	var logs []model.RecommendationLog
	if err := r.db.SelectContext(ctx, &logs, query, prefID); err != nil {
		return nil, fmt.Errorf("failed to list recommendation logs: %w", err)
	}
	return logs, nil
}

// UpsertDocument stores an indexed document and its embedding for semantic
// retrieval. Existing documents with the same ref_id and kind are replaced.
func (r *PostgresRepository) UpsertDocument(ctx context.Context, refID, kind, content string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `
		INSERT INTO documents (ref_id, kind, content, embedding, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (ref_id, kind)
		DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, refID, kind, content, vec); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// VectorSearch returns the documents nearest to the query embedding by
// cosine distance.
func (r *PostgresRepository) VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]model.DocumentMatch, error) {
	if limit <= 0 {
		limit = 5
	}
	vec := pgvector.NewVector(queryEmbedding)
	query := `
		SELECT ref_id, kind, content, embedding <=> $1 AS distance
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var matches []model.DocumentMatch
	if err := r.db.SelectContext(ctx, &matches, query, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	return matches, nil
}
