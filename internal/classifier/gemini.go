package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGemini(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger.Info("Gemini classifier initialised", zap.String("model", cfg.Gemini.Model))
	return &Gemini{
		client:  client,
		model:   cfg.Gemini.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (g *Gemini) Classify(ctx context.Context, text, institution, currency string, docType models.DocumentType) (*models.ClassifiedBatch, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := float32(0.1)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(text, institution, currency, docType)}},
		},
	}
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate content: %v", ErrClassification, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("%w: empty response from gemini", ErrClassification)
	}

	items, skipped, err := parseItems(rawText)
	if err != nil {
		g.logger.Error("Failed to parse gemini response", zap.String("raw", truncate(rawText, 500)), zap.Error(err))
		return nil, err
	}
	if len(skipped) > 0 {
		g.logger.Warn("Skipped unusable items from gemini", zap.Strings("reasons", skipped))
	}

	g.logger.Info("Document classified",
		zap.String("provider", "gemini"),
		zap.String("institution", institution),
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return newBatch(institution, currency, docType, items), nil
}

func (g *Gemini) Close() error {
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
