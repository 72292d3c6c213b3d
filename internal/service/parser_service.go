package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"finvoice/internal/models"
	"finvoice/pkg/config"

	"go.uber.org/zap"
)

var (
	// ErrRequestFailed wraps any failure of the downstream completion call:
	// network error, timeout, non-success status.
	ErrRequestFailed = errors.New("completion request failed")

	// ErrMalformedResponse means the model output could not be parsed as JSON
	// even after brace extraction.
	ErrMalformedResponse = errors.New("malformed model response")
)

// ValidationError reports a required transaction field that is missing or
// carries the wrong type. The parser fails closed instead of filling in a
// guessed value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction field %q: %s", e.Field, e.Reason)
}

// First brace-delimited substring, non-greedy, across newlines. Used when the
// model wraps the JSON object in prose despite instructions not to.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*?\}`)

type ParserService struct {
	completer Completer
	cfg       *config.ParserConfig
	logger    *zap.Logger
}

func NewParserService(completer Completer, cfg *config.ParserConfig, logger *zap.Logger) *ParserService {
	return &ParserService{
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// ParseTransaction turns a natural-language utterance into a validated
// transaction. Each call is independent and issues one downstream request;
// the model is non-deterministic even at low temperature, so identical input
// may yield different results across calls.
func (s *ParserService) ParseTransaction(ctx context.Context, utterance string) (*models.ParsedTransaction, error) {
	raw, err := s.requestExtraction(ctx, utterance)
	if err != nil {
		return nil, err
	}

	parsed, err := s.normalize(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Utterance parsed",
		zap.String("type", string(parsed.Type)),
		zap.Float64("amount", parsed.Amount),
		zap.String("category", parsed.Category),
	)

	return parsed, nil
}

// requestExtraction sends the extraction prompt to the completion capability
// and returns the raw reply text, not yet parsed or validated. The utterance
// is embedded verbatim; the downstream service owns its own input limits.
func (s *ParserService) requestExtraction(ctx context.Context, utterance string) (string, error) {
	prompt := fmt.Sprintf(`Extract structured financial data from this user input:
"%s"

Return a JSON object with:
- type: "income" or "expense"
- amount: a number
- category: short label (e.g., "groceries", "salary", "rent")
- note: optional additional text

Only return valid JSON.`, utterance)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	return raw, nil
}

// normalize extracts a JSON object out of raw model text, parses it and
// validates the required fields. A record failing validation is never
// returned; defaulting missing fields would persist silently corrupt data.
func (s *ParserService) normalize(raw string) (*models.ParsedTransaction, error) {
	candidate := extractJSONCandidate(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return s.validate(fields)
}

// extractJSONCandidate picks the JSON object candidate out of raw text. The
// common case is the text being the object itself; otherwise the first
// brace-delimited substring wins, and with no braces at all the empty object
// stands in so validation reports the missing fields.
func extractJSONCandidate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	if match := jsonObjectPattern.FindString(trimmed); match != "" {
		return match
	}
	return "{}"
}

func (s *ParserService) validate(fields map[string]any) (*models.ParsedTransaction, error) {
	typeValue, ok := fields["type"].(string)
	if !ok {
		return nil, &ValidationError{Field: "type", Reason: "missing or not a string"}
	}

	txType := models.TransactionType(typeValue)
	if txType != models.TypeIncome && txType != models.TypeExpense {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not income or expense", typeValue)}
	}

	amount, ok := fields["amount"].(float64)
	if !ok {
		return nil, &ValidationError{Field: "amount", Reason: "missing or not a number"}
	}

	var category string
	if raw, present := fields["category"]; present && raw != nil {
		category, ok = raw.(string)
		if !ok {
			return nil, &ValidationError{Field: "category", Reason: "not a string"}
		}
	}
	if s.cfg.RequireCategory && category == "" {
		return nil, &ValidationError{Field: "category", Reason: "missing or empty"}
	}

	var note *string
	if raw, present := fields["note"]; present && raw != nil {
		value, ok := raw.(string)
		if !ok {
			return nil, &ValidationError{Field: "note", Reason: "not a string"}
		}
		note = &value
	}

	return &models.ParsedTransaction{
		Type:     txType,
		Amount:   amount,
		Category: category,
		Note:     note,
	}, nil
}
