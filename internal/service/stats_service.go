package service

import (
	"context"
	"fmt"
	"sort"

	"finvoice/internal/dto"
	"finvoice/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatsService struct {
	store  TransactionStore
	logger *zap.Logger
}

func NewStatsService(store TransactionStore, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// Summary returns total income, total expenses and the resulting balance
// across all of the user's transactions.
func (s *StatsService) Summary(ctx context.Context, userID uuid.UUID) (*dto.SummaryResponse, error) {
	transactions, err := s.store.AllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	var income, expenses float64
	for _, tx := range transactions {
		switch tx.Type {
		case models.TypeIncome:
			income += tx.Amount
		case models.TypeExpense:
			expenses += tx.Amount
		}
	}

	return &dto.SummaryResponse{
		Income:   income,
		Expenses: expenses,
		Balance:  income - expenses,
		Count:    len(transactions),
	}, nil
}

// MonthlyTrend groups the user's transactions by creation month (YYYY-MM)
// and returns income/expense totals per month in ascending order.
func (s *StatsService) MonthlyTrend(ctx context.Context, userID uuid.UUID) ([]dto.MonthlyPoint, error) {
	transactions, err := s.store.AllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	byMonth := make(map[string]*dto.MonthlyPoint)
	for _, tx := range transactions {
		month := tx.CreatedAt.Format("2006-01")
		point, ok := byMonth[month]
		if !ok {
			point = &dto.MonthlyPoint{Month: month}
			byMonth[month] = point
		}
		switch tx.Type {
		case models.TypeIncome:
			point.Income += tx.Amount
		case models.TypeExpense:
			point.Expense += tx.Amount
		}
	}

	points := make([]dto.MonthlyPoint, 0, len(byMonth))
	for _, point := range byMonth {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Month < points[j].Month
	})

	return points, nil
}

// CategoryBreakdown returns per-category totals for one transaction type,
// with each category's share of the type's total, largest first.
func (s *StatsService) CategoryBreakdown(ctx context.Context, userID uuid.UUID, txType models.TransactionType) ([]dto.CategoryStat, error) {
	transactions, err := s.store.AllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	totals := make(map[string]*dto.CategoryStat)
	var grandTotal float64
	for _, tx := range transactions {
		if tx.Type != txType {
			continue
		}
		stat, ok := totals[tx.Category]
		if !ok {
			stat = &dto.CategoryStat{Category: tx.Category}
			totals[tx.Category] = stat
		}
		stat.Total += tx.Amount
		stat.Count++
		grandTotal += tx.Amount
	}

	stats := make([]dto.CategoryStat, 0, len(totals))
	for _, stat := range totals {
		if grandTotal > 0 {
			stat.Percentage = (stat.Total / grandTotal) * 100
		}
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Category < stats[j].Category
	})

	return stats, nil
}
