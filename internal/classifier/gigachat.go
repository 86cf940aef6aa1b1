package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

type GigaChat struct {
	client  *gigago.Client
	model   *gigago.GenerativeModel
	timeout time.Duration
	logger  *zap.Logger
}

func NewGigaChat(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*GigaChat, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.GigaChat.Scope),
	}
	if cfg.GigaChat.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.GigaChat.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.GigaChat.Model)
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.1

	logger.Info("GigaChat classifier initialised", zap.String("model", cfg.GigaChat.Model))
	return &GigaChat{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (g *GigaChat) Classify(ctx context.Context, text, institution, currency string, docType models.DocumentType) (*models.ClassifiedBatch, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: buildPrompt(text, institution, currency, docType)},
	}

	start := time.Now()
	resp, err := g.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: gigachat generate: %v", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from gigachat", ErrClassification)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	items, skipped, err := parseItems(content)
	if err != nil {
		g.logger.Error("Failed to parse gigachat response", zap.String("raw", truncate(content, 500)), zap.Error(err))
		return nil, err
	}
	if len(skipped) > 0 {
		g.logger.Warn("Skipped unusable items from gigachat", zap.Strings("reasons", skipped))
	}

	g.logger.Info("Document classified",
		zap.String("provider", "gigachat"),
		zap.String("institution", institution),
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return newBatch(institution, currency, docType, items), nil
}

func (g *GigaChat) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}
