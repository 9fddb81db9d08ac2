package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"core/internal/faredata"
	"core/internal/model"
)

// Document kinds stored in the semantic index.
const (
	DocKindProperty = "property"
	DocKindRoute    = "route"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore persists and queries embedded documents.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, refID, kind, content string, embedding []float32) error
	VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]model.DocumentMatch, error)
}

// SemanticIndex maintains an embedded-document index over properties and
// fare-table routes, and answers free-text similarity queries against it.
type SemanticIndex struct {
	embedder Embedder
	store    DocumentStore
}

// NewSemanticIndex creates a semantic index.
func NewSemanticIndex(embedder Embedder, store DocumentStore) *SemanticIndex {
	return &SemanticIndex{embedder: embedder, store: store}
}

// IndexProperties embeds and stores one document per property. Per-document
// failures are logged and skipped; the count of indexed documents is
// returned.
func (s *SemanticIndex) IndexProperties(ctx context.Context, properties []model.Property) int {
	indexed := 0
	for i := range properties {
		p := &properties[i]
		content := propertyDocument(p)
		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			log.Printf("Warning: failed to embed property %s: %v", p.ID, err)
			continue
		}
		if err := s.store.UpsertDocument(ctx, p.ID, DocKindProperty, content, embedding); err != nil {
			log.Printf("Warning: failed to index property %s: %v", p.ID, err)
			continue
		}
		indexed++
	}
	return indexed
}

// IndexFareTable embeds and stores one document per fare-table route.
func (s *SemanticIndex) IndexFareTable(ctx context.Context, table *faredata.Table) int {
	indexed := 0
	for _, r := range table.Routes() {
		refID := fmt.Sprintf("%s-%s", strings.ToLower(r.Source), strings.ToLower(r.Destination))
		content := routeDocument(r)
		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			log.Printf("Warning: failed to embed route %s: %v", refID, err)
			continue
		}
		if err := s.store.UpsertDocument(ctx, refID, DocKindRoute, content, embedding); err != nil {
			log.Printf("Warning: failed to index route %s: %v", refID, err)
			continue
		}
		indexed++
	}
	return indexed
}

// Search embeds the query and returns the nearest indexed documents.
func (s *SemanticIndex) Search(ctx context.Context, query string, topK int) ([]model.DocumentMatch, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := s.store.VectorSearch(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return matches, nil
}

// propertyDocument renders a property as one indexable text line.
func propertyDocument(p *model.Property) string {
	houseType := "unknown type"
	if p.HouseType != nil {
		houseType = *p.HouseType
	}
	bedrooms := "unknown bedrooms"
	if p.Bedrooms != nil {
		bedrooms = fmt.Sprintf("%d bedrooms", *p.Bedrooms)
	}
	return fmt.Sprintf("%s: %s, %.0f ETB, %s, %s, amenities: %s",
		p.Title, p.Location, p.Price, houseType, bedrooms, strings.Join(p.Amenities, ", "))
}

// routeDocument renders a fare-table row as one indexable text line.
func routeDocument(r faredata.Route) string {
	return fmt.Sprintf("%s to %s: %.0f ETB, %.1f km", r.Source, r.Destination, r.Price, r.Kilometer)
}
