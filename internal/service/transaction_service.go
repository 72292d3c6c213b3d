package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finvoice/internal/dto"
	"finvoice/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionStore is the persistence surface for transactions. All reads
// and deletes are scoped to the owning user.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByUser(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
	AllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	DeleteByUser(ctx context.Context, userID, id uuid.UUID) error
}

type TransactionService struct {
	store  TransactionStore
	parser *ParserService
	logger *zap.Logger
}

func NewTransactionService(store TransactionStore, parser *ParserService, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		parser: parser,
		logger: logger,
	}
}

// Create persists a transaction for the user, attaching identity and
// timestamps. The request passes the same validation gate as parsed model
// output, so a hand-typed record cannot bypass the field rules.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	fields := map[string]any{
		"type":   req.Type,
		"amount": req.Amount,
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}

	parsed, err := s.parser.validate(fields)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &models.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      parsed.Type,
		Amount:    parsed.Amount,
		Category:  sanitizeUTF8(parsed.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parsed.Note != nil {
		note := sanitizeUTF8(*parsed.Note)
		tx.Note = &note
	}

	if err := s.store.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("Transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", userID.String()),
	)

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*dto.TransactionResponse, error) {
	tx, err := s.store.GetByUser(ctx, userID, id)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.TransactionListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.store.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	items := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		items[i] = toTransactionResponse(tx)
	}

	return &dto.TransactionListResponse{
		Transactions: items,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteByUser(ctx, userID, id); err != nil {
		return ErrTransactionNotFound
	}
	return nil
}

func toTransactionResponse(tx *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        tx.ID.String(),
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Category:  tx.Category,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}
