package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/moolen/upgradelens/internal/models"
)

// EntitySource produces generic NER entities for a text. Implementations
// wrap an external entity recognition service.
type EntitySource interface {
	DetectEntities(ctx context.Context, text string) ([]models.Entity, error)
}

// StaticSource always returns the same entities.
type StaticSource []models.Entity

// DetectEntities returns the static entity list, or nothing for blank text.
func (s StaticSource) DetectEntities(_ context.Context, text string) ([]models.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Entity{}, nil
	}
	return append([]models.Entity(nil), s...), nil
}

// LoadEntitiesFile reads a JSON array of entities, such as a saved NER
// response. Every entity is validated while decoding.
func LoadEntitiesFile(path string) (StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities file: %w", err)
	}
	var entities []models.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities file %s: %w", path, err)
	}
	return StaticSource(entities), nil
}

// AnalyzeWithSource fetches external entities from src and analyzes text.
func (e *Engine) AnalyzeWithSource(ctx context.Context, text string, src EntitySource) (*models.AnalysisResult, error) {
	var external []models.Entity
	if src != nil {
		var err error
		external, err = src.DetectEntities(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("entity detection failed: %w", err)
		}
	}
	return e.Analyze(ctx, text, external)
}
