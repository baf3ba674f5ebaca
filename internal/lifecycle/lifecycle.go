package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/apperr"
	"github.com/rahmatfadhil/gostore/internal/models"
)

// Manager owns every order/payment status transition. Each operation runs in
// a single transaction; stock and status guards are conditional UPDATEs
// checked via RowsAffected, so concurrent duplicates lose the race instead
// of applying twice.
type Manager struct {
	DB *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{DB: db}
}

type ItemRequest struct {
	ProductID *uint `json:"product_id,omitempty"`
	ServiceID *uint `json:"service_id,omitempty"`
	Quantity  uint  `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []ItemRequest `json:"items"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method"`
	Notes           string        `json:"notes"`
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

func (m *Manager) CreateOrder(ctx context.Context, userID uint, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", apperr.ErrValidation)
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address required", apperr.ErrValidation)
	}

	var order models.Order

	txErr := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			total float64
			items []models.OrderItem
		)

		for i := range req.Items {
			it := req.Items[i]
			if it.Quantity == 0 {
				return fmt.Errorf("%w: quantity must be > 0", apperr.ErrValidation)
			}
			if (it.ProductID == nil) == (it.ServiceID == nil) {
				return fmt.Errorf("%w: item must reference exactly one product or service", apperr.ErrValidation)
			}

			var price float64
			switch {
			case it.ProductID != nil:
				var p models.Product
				if err := tx.First(&p, *it.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: product %d", apperr.ErrNotFound, *it.ProductID)
					}
					return err
				}
				res := tx.Model(&models.Product{}).
					Where("id = ? AND stock >= ?", p.ID, it.Quantity).
					UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: product %d has %d in stock, requested %d",
						apperr.ErrInsufficientStock, p.ID, p.Stock, it.Quantity)
				}
				price = p.Price
			case it.ServiceID != nil:
				var s models.Service
				if err := tx.First(&s, *it.ServiceID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: service %d", apperr.ErrNotFound, *it.ServiceID)
					}
					return err
				}
				if !s.Active {
					return fmt.Errorf("%w: service %d", apperr.ErrNotFound, *it.ServiceID)
				}
				price = s.Price
			}

			total += float64(it.Quantity) * price
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				ServiceID: it.ServiceID,
				Quantity:  it.Quantity,
				UnitPrice: price,
			})
		}

		order = models.Order{
			Number:          newOrderNumber(),
			UserID:          userID,
			Total:           total,
			Status:          models.OrderStatusPending,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
			Items:           items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID: order.ID,
			Amount:  total,
			Method:  req.PaymentMethod,
			Status:  models.PaymentStatusPending,
		}
		return tx.Create(&payment).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

// SubmitPaymentProof stores the proof reference and moves the payment to
// PENDING_VERIFICATION. Resubmission replaces the pending proof in place; a
// second payment row is never created.
func (m *Manager) SubmitPaymentProof(ctx context.Context, orderID, userID uint, proofURL string) (*models.Payment, error) {
	if proofURL == "" {
		return nil, fmt.Errorf("%w: proof required", apperr.ErrValidation)
	}

	var payment models.Payment

	txErr := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment for order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}
		switch payment.Status {
		case models.PaymentStatusPaid, models.PaymentStatusRefunded:
			return fmt.Errorf("%w: payment is %s", apperr.ErrInvalidState, payment.Status)
		}

		payment.ProofURL = proofURL
		payment.Status = models.PaymentStatusPendingVerification
		return tx.Save(&payment).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// VerifyPayment applies a verifier decision to a payment awaiting
// verification. PAID also moves the order to PROCESSING and notifies the
// customer; FAILED/CANCELLED records the rejection and leaves the order
// untouched so the customer may resubmit. A concurrent duplicate decision
// loses the guarded UPDATE and gets ErrAlreadyVerified.
func (m *Manager) VerifyPayment(ctx context.Context, paymentID, verifierID uint, decision models.PaymentStatus) (*models.Payment, error) {
	switch decision {
	case models.PaymentStatusPaid, models.PaymentStatusFailed, models.PaymentStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: decision %q", apperr.ErrValidation, decision)
	}

	var payment models.Payment

	txErr := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d", apperr.ErrNotFound, paymentID)
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentStatusPendingVerification).
			Updates(map[string]interface{}{
				"status":      decision,
				"verified_by": verifierID,
				"verified_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either never submitted for verification, or another verifier
			// won the race. Re-read to tell the two apart.
			var cur models.Payment
			if err := tx.First(&cur, paymentID).Error; err != nil {
				return err
			}
			switch cur.Status {
			case models.PaymentStatusPaid, models.PaymentStatusFailed, models.PaymentStatusCancelled, models.PaymentStatusRefunded:
				return fmt.Errorf("%w: payment %d is %s", apperr.ErrAlreadyVerified, paymentID, cur.Status)
			default:
				return fmt.Errorf("%w: payment %d is %s", apperr.ErrInvalidState, paymentID, cur.Status)
			}
		}

		payment.Status = decision
		payment.VerifiedBy = &verifierID
		payment.VerifiedAt = &now

		var order models.Order
		if err := tx.First(&order, payment.OrderID).Error; err != nil {
			return err
		}

		if decision == models.PaymentStatusPaid {
			if err := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
				Update("status", models.OrderStatusProcessing).Error; err != nil {
				return err
			}
			n := models.PersonalNotification(order.UserID, "payment",
				"Payment confirmed",
				fmt.Sprintf("Payment for order %s has been confirmed, your order is being processed", order.Number))
			return tx.Create(&n).Error
		}

		n := models.PersonalNotification(order.UserID, "payment",
			"Payment rejected",
			fmt.Sprintf("Payment for order %s was rejected, please submit a new proof", order.Number))
		return tx.Create(&n).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// CancelOrder is allowed only while the order is PENDING. Stock reserved at
// creation time is returned to each product line and staff get a broadcast
// notification, all in one transaction.
func (m *Manager) CancelOrder(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order

	txErr := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s is %s", apperr.ErrInvalidState, order.Number, order.Status)
		}
		order.Status = models.OrderStatusCancelled

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if it.ProductID == nil {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", *it.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status IN ?", order.ID,
				[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusPendingVerification}).
			Update("status", models.PaymentStatusCancelled).Error; err != nil {
			return err
		}

		n := models.BroadcastNotification("order",
			"Order cancelled",
			fmt.Sprintf("Order %s was cancelled by the customer", order.Number))
		return tx.Create(&n).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

// shippingHops lists the only legal admin-driven status moves.
var shippingHops = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusShipped:   models.OrderStatusProcessing,
	models.OrderStatusDelivered: models.OrderStatusShipped,
}

// UpdateOrderStatus advances an order along PROCESSING -> SHIPPED ->
// DELIVERED and notifies the customer.
func (m *Manager) UpdateOrderStatus(ctx context.Context, orderID uint, next models.OrderStatus) (*models.Order, error) {
	prev, ok := shippingHops[next]
	if !ok {
		return nil, fmt.Errorf("%w: status %q", apperr.ErrValidation, next)
	}

	var order models.Order

	txErr := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %s is %s, cannot move to %s",
				apperr.ErrInvalidState, order.Number, order.Status, next)
		}
		order.Status = next

		n := models.PersonalNotification(order.UserID, "order",
			"Order status updated",
			fmt.Sprintf("Order %s is now %s", order.Number, next))
		return tx.Create(&n).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}
