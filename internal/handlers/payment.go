package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/lifecycle"
	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
)

type PaymentHandler struct {
	DB        *gorm.DB
	Lifecycle *lifecycle.Manager
	Producer  *mykafka.Producer
}

// ListPending is the finance verification queue.
func (h *PaymentHandler) ListPending(c echo.Context) error {
	var payments []models.Payment
	if err := h.DB.
		Where("status = ?", models.PaymentStatusPendingVerification).
		Order("updated_at ASC").
		Find(&payments).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

// PatchPayment applies a verification decision: PAID, FAILED or CANCELLED.
func (h *PaymentHandler) PatchPayment(c echo.Context) error {
	verifierID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status models.PaymentStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	payment, err := h.Lifecycle.VerifyPayment(c.Request().Context(), id, verifierID, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "payment_events", map[string]any{
		"type":      "payment_verified",
		"userID":    verifierID,
		"paymentID": payment.ID,
		"status":    payment.Status,
	})

	return c.JSON(http.StatusOK, payment)
}
