package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/lifecycle"
	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
	"github.com/rahmatfadhil/gostore/internal/storage"
)

type OrderHandler struct {
	DB        *gorm.DB
	Lifecycle *lifecycle.Manager
	Producer  *mykafka.Producer
	Store     *storage.Store
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var req lifecycle.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Lifecycle.CreateOrder(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"number":  order.Number,
		"total":   order.Total,
	})

	return c.JSON(http.StatusCreated, order)
}

// ListOrders returns the caller's orders; staff see everyone's.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	q := h.DB.Model(&models.Order{}).Preload("Items")
	if !mwauth.IsStaff(mwauth.Role(c)) {
		q = q.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	q := h.DB.Preload("Items").Where("id = ?", id)
	if !mwauth.IsStaff(mwauth.Role(c)) {
		q = q.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := q.First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	var payment models.Payment
	if err := h.DB.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		return c.JSON(http.StatusOK, echo.Map{"order": order})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order, "payment": payment})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.Lifecycle.CancelOrder(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_cancelled",
		"userID":  userID,
		"orderID": order.ID,
		"number":  order.Number,
	})

	return c.JSON(http.StatusOK, order)
}

// SubmitPaymentProof accepts a multipart image, stores it, and moves the
// payment to PENDING_VERIFICATION.
func (h *OrderHandler) SubmitPaymentProof(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("proof")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "proof file required")
	}

	proofURL, err := h.Store.SaveProof(fh)
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.Lifecycle.SubmitPaymentProof(c.Request().Context(), id, userID, proofURL)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "payment_events", map[string]any{
		"type":      "payment_proof_submitted",
		"userID":    userID,
		"orderID":   id,
		"paymentID": payment.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"proof_url": proofURL, "payment": payment})
}

// UpdateStatus advances shipping state (staff only, wired behind RequireRole).
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Lifecycle.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, order)
}
