package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// ParsedTransaction is the validated result of running a natural-language
// utterance through the extraction pipeline. It carries no identity or
// ownership; those are attached only when the caller persists it.
type ParsedTransaction struct {
	Type     TransactionType `json:"type"`
	Amount   float64         `json:"amount"`
	Category string          `json:"category"`
	Note     *string         `json:"note,omitempty"`
}

type Transaction struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Type      TransactionType `db:"type"`
	Amount    float64         `db:"amount"`
	Category  string          `db:"category"`
	Note      *string         `db:"note"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
