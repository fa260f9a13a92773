package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/config"
	"github.com/sitelink/claimworks/internal/domain/entity"
)

const systemPrompt = `You are a construction contract analyst. You receive the text of a contract document and identify its clauses.

Return a JSON object with a single key "clauses" holding an array. Each element has:
- "clause_ref": the clause number or heading reference, e.g. "14.2"
- "title": short clause title, empty string if none
- "body": the clause text, verbatim
- "risk_level": "low", "medium" or "high" from the contractor's perspective
- "page_number": 1-based page the clause starts on (pages are separated by form feed characters)

Rate payment terms, time bars, liquidated damages and broad indemnities as high risk. Return {"clauses": []} when the text contains no identifiable clauses.`

// ClauseExtractor identifies contract clauses via the OpenAI chat API
type ClauseExtractor struct {
	client      *gopenai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewClauseExtractor creates an OpenAI-backed clause extractor
func NewClauseExtractor(cfg config.OpenAIConfig, logger *zap.Logger) *ClauseExtractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ClauseExtractor{
		client:      gopenai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

type extractionResult struct {
	Clauses []port.ExtractedClause `json:"clauses"`
}

// Extract identifies clauses and risk levels in the document text
func (e *ClauseExtractor) Extract(ctx context.Context, documentTitle, text string) ([]port.ExtractedClause, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		ResponseFormat: &gopenai.ChatCompletionResponseFormat{
			Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role:    gopenai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Document: %s\n\n%s", documentTitle, text),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clause extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("clause extraction returned no choices")
	}

	content := resp.Choices[0].Message.Content
	result, err := parseExtraction(content)
	if err != nil {
		e.logger.Warn("Failed to parse extraction response",
			zap.String("document", documentTitle),
			zap.Error(err))
		return nil, err
	}

	clauses := sanitize(result.Clauses)
	e.logger.Info("Extracted clauses",
		zap.String("document", documentTitle),
		zap.Int("count", len(clauses)))
	return clauses, nil
}

// parseExtraction decodes the model output. Some models wrap JSON in a
// fenced code block even when asked not to, so strip fences before the
// fallback decode.
func parseExtraction(content string) (*extractionResult, error) {
	var result extractionResult
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return &result, nil
	}

	stripped := strings.TrimSpace(content)
	stripped = strings.TrimPrefix(stripped, "```json")
	stripped = strings.TrimPrefix(stripped, "```")
	stripped = strings.TrimSuffix(stripped, "```")
	stripped = strings.TrimSpace(stripped)

	if err := json.Unmarshal([]byte(stripped), &result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return &result, nil
}

// sanitize drops clauses without a body and normalizes unknown risk levels
// to medium rather than failing the whole document
func sanitize(clauses []port.ExtractedClause) []port.ExtractedClause {
	out := make([]port.ExtractedClause, 0, len(clauses))
	for _, c := range clauses {
		if strings.TrimSpace(c.Body) == "" {
			continue
		}
		if !entity.ValidRiskLevel(c.RiskLevel) {
			c.RiskLevel = string(entity.RiskMedium)
		}
		if c.PageNumber < 1 {
			c.PageNumber = 1
		}
		out = append(out, c)
	}
	return out
}
