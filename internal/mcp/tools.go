package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/models"
)

type documentInput struct {
	Text     string          `json:"text"`
	Entities []models.Entity `json:"entities,omitempty"`
}

func parseDocument(input json.RawMessage) (documentInput, error) {
	var doc documentInput
	if err := json.Unmarshal(input, &doc); err != nil {
		return doc, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return doc, fmt.Errorf("text is required")
	}
	return doc, nil
}

type analyzeTool struct {
	holder *analysis.Holder
}

func (t *analyzeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	doc, err := parseDocument(input)
	if err != nil {
		return nil, err
	}
	r, err := t.holder.Engine().Analyze(ctx, doc.Text, doc.Entities)
	if err != nil {
		return nil, err
	}
	r.AnalysisID = uuid.NewString()
	return r, nil
}

type breakingChangesTool struct {
	holder *analysis.Holder
}

func (t *breakingChangesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	doc, err := parseDocument(input)
	if err != nil {
		return nil, err
	}
	report, err := t.holder.Engine().DetectBreakingChanges(ctx, doc.Text, doc.Entities)
	if err != nil {
		return nil, err
	}
	report.AnalysisID = uuid.NewString()
	return report, nil
}
