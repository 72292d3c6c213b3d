package service

import (
	"context"
	"fmt"

	"finvoice/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// Completer is the completion capability consumed by the parser: given a
// prompt, return the model's raw text. Implementations are expected to be
// non-deterministic and fallible.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func buildSystemInstruction() string {
	return `You extract financial transaction data from natural language. ` +
		`Given a user's sentence about money they earned or spent, you return ` +
		`a single JSON object with exactly these fields: "type" ("income" or ` +
		`"expense"), "amount" (a number), "category" (a short label such as ` +
		`"groceries" or "salary") and "note" (optional free text). You return ` +
		`ONLY the JSON object, with no commentary, no markdown and no ` +
		`explanation before or after it.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	// Low temperature biases the model toward literal extraction rather than
	// creative completion.
	model.Temperature = cfg.Temperature

	logger.Info("LLM service initialized",
		zap.String("model", cfg.Model),
		zap.Float64("temperature", cfg.Temperature),
	)

	return &LLMService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete issues exactly one completion request and returns the raw reply
// text. No retries, no caching; a failure surfaces to the caller as is.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
