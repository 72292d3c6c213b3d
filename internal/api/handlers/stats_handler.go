package handlers

import (
	"finvoice/internal/models"
	"finvoice/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsService *service.StatsService
	logger       *zap.Logger
}

func NewStatsHandler(statsService *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// Summary godoc
// @Summary Income/expense summary
// @Description Total income, total expenses and balance for the authenticated user
// @Tags stats
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.SummaryResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/stats/summary [get]
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp, err := h.statsService.Summary(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build summary",
		})
	}

	return c.JSON(resp)
}

// Monthly godoc
// @Summary Monthly income/expense trend
// @Description Per-month income and expense totals, oldest month first
// @Tags stats
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.MonthlyPoint
// @Failure 401 {object} map[string]string
// @Router /api/v1/stats/monthly [get]
func (h *StatsHandler) Monthly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	points, err := h.statsService.MonthlyTrend(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build monthly trend", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build monthly trend",
		})
	}

	return c.JSON(points)
}

// Categories godoc
// @Summary Per-category totals
// @Description Category totals and shares for one transaction type
// @Tags stats
// @Produce json
// @Param type query string false "Transaction type: income or expense" default(expense)
// @Security Bearer
// @Success 200 {array} dto.CategoryStat
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/stats/categories [get]
func (h *StatsHandler) Categories(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var txType models.TransactionType
	switch c.Query("type", "expense") {
	case "income":
		txType = models.TypeIncome
	case "expense":
		txType = models.TypeExpense
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction type",
		})
	}

	stats, err := h.statsService.CategoryBreakdown(c.Context(), userID, txType)
	if err != nil {
		h.logger.Error("Failed to build category breakdown", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build category breakdown",
		})
	}

	return c.JSON(stats)
}
