package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/models"
)

type ReportHandler struct {
	DB *gorm.DB
}

type statusRow struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
	Total  float64            `json:"total"`
}

// Sales aggregates order counts/totals per status plus confirmed revenue,
// optionally bounded by ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportHandler) Sales(c echo.Context) error {
	q := h.DB.Model(&models.Order{})
	pq := h.DB.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPaid)

	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		q = q.Where("created_at >= ?", t)
		pq = pq.Where("verified_at >= ?", t)
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		end := t.AddDate(0, 0, 1)
		q = q.Where("created_at < ?", end)
		pq = pq.Where("verified_at < ?", end)
	}

	var rows []statusRow
	if err := q.Select("status, count(*) as count, coalesce(sum(total), 0) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return respondError(c, err)
	}

	var revenue float64
	if err := pq.Select("coalesce(sum(amount), 0)").Scan(&revenue).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"by_status": rows,
		"revenue":   revenue,
	})
}
