package cart

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/lifecycle"
	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
)

type CartHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	Lifecycle *lifecycle.Manager
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item)
	if tx.Error == nil {
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		h.publish(c, map[string]any{
			"type":      "cart_item_added",
			"userID":    userID,
			"productID": req.ProductID,
			"quantity":  item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	newItem := models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  newItem.Quantity,
	})
	return c.JSON(http.StatusOK, newItem)
}

func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if item.Quantity > 1 {
		item.Quantity -= 1
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		h.publish(c, map[string]any{
			"type":         "cart_item_decremented",
			"userID":       userID,
			"id":           item.ID,
			"new_quantity": item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"deleted_item": id})
}

func (h *CartHandler) DeleteAllFromCart(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.DB.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var remaining []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&remaining).Error; err != nil {
		c.Logger().Errorf("DB read after delete error: %v", err)
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, remaining)
}

// Checkout turns the cart into an order through the lifecycle manager and
// clears the cart on success.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ShippingAddress string `json:"shipping_address"`
		PaymentMethod   string `json:"payment_method"`
		Notes           string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	orderReq := lifecycle.CreateOrderRequest{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	for i := range items {
		pid := items[i].ProductID
		orderReq.Items = append(orderReq.Items, lifecycle.ItemRequest{
			ProductID: &pid,
			Quantity:  items[i].Quantity,
		})
	}

	order, err := h.Lifecycle.CreateOrder(c.Request().Context(), userID, orderReq)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		c.Logger().Errorf("cart clear after checkout error: %v", err)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"number":  order.Number,
	})
	return c.JSON(http.StatusCreated, order)
}
