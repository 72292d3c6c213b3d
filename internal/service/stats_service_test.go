package service

import (
	"context"
	"testing"
	"time"

	"finvoice/internal/dto"
	"finvoice/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return ts
}

func statsFixture(t *testing.T, userID uuid.UUID) *fakeTransactionStore {
	t.Helper()
	store := newFakeTransactionStore()
	rows := []struct {
		txType   models.TransactionType
		amount   float64
		category string
		created  string
	}{
		{models.TypeIncome, 3000, "salary", "2026-07-01"},
		{models.TypeIncome, 500, "freelance", "2026-08-10"},
		{models.TypeExpense, 1200, "rent", "2026-07-02"},
		{models.TypeExpense, 300, "groceries", "2026-08-05"},
		{models.TypeExpense, 100, "groceries", "2026-08-20"},
	}
	for _, row := range rows {
		created := mustTime(t, row.created)
		store.add(&models.Transaction{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      row.txType,
			Amount:    row.amount,
			Category:  row.category,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	// A foreign user's row must never leak into the stats.
	other := mustTime(t, "2026-08-01")
	store.add(&models.Transaction{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      models.TypeExpense,
		Amount:    9999,
		Category:  "rent",
		CreatedAt: other,
		UpdatedAt: other,
	})
	return store
}

func TestStatsSummary(t *testing.T) {
	userID := uuid.New()
	svc := NewStatsService(statsFixture(t, userID), zap.NewNop())

	summary, err := svc.Summary(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, float64(3500), summary.Income)
	assert.Equal(t, float64(1600), summary.Expenses)
	assert.Equal(t, float64(1900), summary.Balance)
	assert.Equal(t, 5, summary.Count)
}

func TestStatsSummary_NoTransactions(t *testing.T) {
	svc := NewStatsService(newFakeTransactionStore(), zap.NewNop())

	summary, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Zero(t, summary.Income)
	assert.Zero(t, summary.Expenses)
	assert.Zero(t, summary.Balance)
	assert.Zero(t, summary.Count)
}

func TestStatsMonthlyTrend(t *testing.T) {
	userID := uuid.New()
	svc := NewStatsService(statsFixture(t, userID), zap.NewNop())

	points, err := svc.MonthlyTrend(context.Background(), userID)
	require.NoError(t, err)

	require.Equal(t, []dto.MonthlyPoint{
		{Month: "2026-07", Income: 3000, Expense: 1200},
		{Month: "2026-08", Income: 500, Expense: 400},
	}, points)
}

func TestStatsCategoryBreakdown(t *testing.T) {
	userID := uuid.New()
	svc := NewStatsService(statsFixture(t, userID), zap.NewNop())

	stats, err := svc.CategoryBreakdown(context.Background(), userID, models.TypeExpense)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, "rent", stats[0].Category)
	assert.Equal(t, float64(1200), stats[0].Total)
	assert.Equal(t, 1, stats[0].Count)
	assert.InDelta(t, 75.0, stats[0].Percentage, 0.001)

	assert.Equal(t, "groceries", stats[1].Category)
	assert.Equal(t, float64(400), stats[1].Total)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, 25.0, stats[1].Percentage, 0.001)
}

func TestStatsCategoryBreakdown_IncomeOnly(t *testing.T) {
	userID := uuid.New()
	svc := NewStatsService(statsFixture(t, userID), zap.NewNop())

	stats, err := svc.CategoryBreakdown(context.Background(), userID, models.TypeIncome)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, "salary", stats[0].Category)
	assert.Equal(t, "freelance", stats[1].Category)
}
