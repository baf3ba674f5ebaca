package lifecycle

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/apperr"
	"github.com/rahmatfadhil/gostore/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Service{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Notification{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock uint, price float64) models.Product {
	p := models.Product{Name: "product", Description: "d", Price: price, Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedService(t *testing.T, db *gorm.DB, price float64) models.Service {
	s := models.Service{Name: "service", Description: "d", Price: price, Active: true}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func orderReq(productID uint, qty uint) CreateOrderRequest {
	pid := productID
	return CreateOrderRequest{
		Items:           []ItemRequest{{ProductID: &pid, Quantity: qty}},
		ShippingAddress: "Jl. Test 1",
		PaymentMethod:   "bank_transfer",
	}
}

func TestCreateOrderComputesTotalAndReservesStock(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 10000)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 2))
	require.NoError(t, err)
	require.Equal(t, float64(20000), order.Total)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.Number)
	require.Len(t, order.Items, 1)
	require.Equal(t, float64(10000), order.Items[0].UnitPrice)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, uint(3), got.Stock)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.Equal(t, float64(20000), payment.Amount)
}

func TestCreateOrderMixedProductAndService(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 2, 1500)
	s := seedService(t, db, 50000)

	pid, sid := p.ID, s.ID
	req := CreateOrderRequest{
		Items: []ItemRequest{
			{ProductID: &pid, Quantity: 2},
			{ServiceID: &sid, Quantity: 1},
		},
		ShippingAddress: "Jl. Test 1",
		PaymentMethod:   "bank_transfer",
	}

	order, err := m.CreateOrder(context.Background(), 1, req)
	require.NoError(t, err)
	require.Equal(t, float64(53000), order.Total)
	require.Len(t, order.Items, 2)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)
	pid := p.ID

	cases := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{
			name: "no items",
			req:  CreateOrderRequest{ShippingAddress: "addr"},
			want: apperr.ErrValidation,
		},
		{
			name: "missing address",
			req: CreateOrderRequest{
				Items: []ItemRequest{{ProductID: &pid, Quantity: 1}},
			},
			want: apperr.ErrValidation,
		},
		{
			name: "zero quantity",
			req: CreateOrderRequest{
				Items:           []ItemRequest{{ProductID: &pid, Quantity: 0}},
				ShippingAddress: "addr",
			},
			want: apperr.ErrValidation,
		},
		{
			name: "neither product nor service",
			req: CreateOrderRequest{
				Items:           []ItemRequest{{Quantity: 1}},
				ShippingAddress: "addr",
			},
			want: apperr.ErrValidation,
		},
		{
			name: "unknown product",
			req: func() CreateOrderRequest {
				missing := uint(999)
				return CreateOrderRequest{
					Items:           []ItemRequest{{ProductID: &missing, Quantity: 1}},
					ShippingAddress: "addr",
				}
			}(),
			want: apperr.ErrNotFound,
		},
		{
			name: "insufficient stock",
			req: CreateOrderRequest{
				Items:           []ItemRequest{{ProductID: &pid, Quantity: 6}},
				ShippingAddress: "addr",
			},
			want: apperr.ErrInsufficientStock,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.CreateOrder(context.Background(), 1, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}

	// failed attempts must not leak reservations
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, uint(5), got.Stock)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestSubmitPaymentProofReplacesPending(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)

	pay, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/a.png")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPendingVerification, pay.Status)
	require.Equal(t, "/uploads/a.png", pay.ProofURL)

	// a resubmission replaces the proof, it never creates a second row
	pay2, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/b.png")
	require.NoError(t, err)
	require.Equal(t, pay.ID, pay2.ID)
	require.Equal(t, "/uploads/b.png", pay2.ProofURL)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitPaymentProofWrongOwner(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)

	_, err = m.SubmitPaymentProof(context.Background(), order.ID, 2, "/uploads/a.png")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVerifyPaymentPaidFlow(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 10000)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 2))
	require.NoError(t, err)

	pay, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/a.png")
	require.NoError(t, err)

	verified, err := m.VerifyPayment(context.Background(), pay.ID, 42, models.PaymentStatusPaid)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	require.EqualValues(t, 42, *verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	require.Equal(t, models.OrderStatusProcessing, gotOrder.Status)

	var n models.Notification
	require.NoError(t, db.Where("scope = ?", models.NotificationScopePersonal).First(&n).Error)
	require.NotNil(t, n.UserID)
	require.EqualValues(t, 1, *n.UserID)
	require.Equal(t, "payment", n.Type)

	// paid orders can no longer be cancelled
	_, err = m.CancelOrder(context.Background(), order.ID, 1)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestVerifyPaymentTwice(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)
	pay, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/a.png")
	require.NoError(t, err)

	_, err = m.VerifyPayment(context.Background(), pay.ID, 42, models.PaymentStatusPaid)
	require.NoError(t, err)

	_, err = m.VerifyPayment(context.Background(), pay.ID, 43, models.PaymentStatusPaid)
	require.ErrorIs(t, err, apperr.ErrAlreadyVerified)

	// exactly one confirmation notification
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("scope = ?", models.NotificationScopePersonal).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestVerifyPaymentBeforeProof(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)

	var pay models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&pay).Error)

	_, err = m.VerifyPayment(context.Background(), pay.ID, 42, models.PaymentStatusPaid)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestVerifyPaymentRejectionAllowsRetry(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)
	pay, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/a.png")
	require.NoError(t, err)

	rejected, err := m.VerifyPayment(context.Background(), pay.ID, 42, models.PaymentStatusFailed)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, rejected.Status)

	// the order stays as it was so the customer may retry
	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	require.Equal(t, models.OrderStatusPending, gotOrder.Status)

	pay2, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/b.png")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPendingVerification, pay2.Status)

	_, err = m.VerifyPayment(context.Background(), pay2.ID, 42, models.PaymentStatusPaid)
	require.NoError(t, err)
}

func TestVerifyPaymentBadDecision(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)

	_, err := m.VerifyPayment(context.Background(), 1, 42, models.PaymentStatusRefunded)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 10000)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 2))
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, uint(3), got.Stock)

	cancelled, err := m.CancelOrder(context.Background(), order.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, uint(5), got.Stock)

	var pay models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&pay).Error)
	require.Equal(t, models.PaymentStatusCancelled, pay.Status)

	var n models.Notification
	require.NoError(t, db.Where("scope = ?", models.NotificationScopeBroadcast).First(&n).Error)
	require.Nil(t, n.UserID)
	require.Equal(t, "order", n.Type)
}

func TestCancelOrderTwice(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 2))
	require.NoError(t, err)

	_, err = m.CancelOrder(context.Background(), order.ID, 1)
	require.NoError(t, err)

	_, err = m.CancelOrder(context.Background(), order.ID, 1)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	// no double restore
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, uint(5), got.Stock)
}

func TestCancelOrderWrongOwner(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)

	_, err = m.CancelOrder(context.Background(), order.ID, 2)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateOrderStatusHops(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	p := seedProduct(t, db, 5, 100)

	order, err := m.CreateOrder(context.Background(), 1, orderReq(p.ID, 1))
	require.NoError(t, err)

	// not yet processing
	_, err = m.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusShipped)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	pay, err := m.SubmitPaymentProof(context.Background(), order.ID, 1, "/uploads/a.png")
	require.NoError(t, err)
	_, err = m.VerifyPayment(context.Background(), pay.ID, 42, models.PaymentStatusPaid)
	require.NoError(t, err)

	// skipping SHIPPED is not allowed
	_, err = m.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusDelivered)
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	shipped, err := m.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, shipped.Status)

	delivered, err := m.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = m.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusPending)
	require.ErrorIs(t, err, apperr.ErrValidation)
}
