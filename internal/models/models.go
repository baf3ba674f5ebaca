package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleFinance  = "finance"
	RoleOwner    = "owner"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "PENDING"
	PaymentStatusPendingVerification PaymentStatus = "PENDING_VERIFICATION"
	PaymentStatusPaid                PaymentStatus = "PAID"
	PaymentStatusFailed              PaymentStatus = "FAILED"
	PaymentStatusCancelled           PaymentStatus = "CANCELLED"
	PaymentStatusRefunded            PaymentStatus = "REFUNDED"
)

const (
	NotificationScopePersonal  = "personal"
	NotificationScopeBroadcast = "broadcast"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"    json:"id"`
	Username     string `gorm:"unique;not null"             json:"username"`
	PasswordHash string `gorm:"not null"                    json:"-"`
	Role         string `gorm:"not null;default:customer"   json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Stock       uint    `json:"stock"`
}

type Service struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Active      bool    `gorm:"default:true"              json:"active"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey"           json:"id"`
	Number          string      `gorm:"uniqueIndex;not null" json:"number"`
	UserID          uint        `gorm:"index;not null"       json:"user_id"`
	Total           float64     `gorm:"not null"             json:"total"`
	Status          OrderStatus `gorm:"not null"             json:"status"`
	ShippingAddress string      `gorm:"not null"             json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"   json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem references exactly one of ProductID / ServiceID. UnitPrice is
// captured at order creation time and never re-read from the catalog.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	OrderID   uint    `gorm:"index;not null"              json:"order_id"`
	ProductID *uint   `gorm:"index"                       json:"product_id,omitempty"`
	ServiceID *uint   `gorm:"index"                       json:"service_id,omitempty"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
	UnitPrice float64 `gorm:"not null"                    json:"unit_price"`
}

type Payment struct {
	ID         uint          `gorm:"primaryKey"           json:"id"`
	OrderID    uint          `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount     float64       `gorm:"not null"             json:"amount"`
	Method     string        `json:"method"`
	Status     PaymentStatus `gorm:"not null"             json:"status"`
	ProofURL   string        `json:"proof_url,omitempty"`
	VerifiedBy *uint         `json:"verified_by,omitempty"`
	VerifiedAt *time.Time    `json:"verified_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Notification is personal (UserID set) or broadcast (UserID nil, visible to
// staff roles). Scope makes the variant explicit instead of "nil means broadcast".
type Notification struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Scope     string    `gorm:"not null"        json:"scope"`
	UserID    *uint     `gorm:"index"           json:"user_id,omitempty"`
	Type      string    `gorm:"not null"        json:"type"`
	Title     string    `gorm:"not null"        json:"title"`
	Message   string    `gorm:"not null"        json:"message"`
	Read      bool      `gorm:"default:false"   json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

func PersonalNotification(userID uint, typ, title, message string) Notification {
	uid := userID
	return Notification{
		Scope:   NotificationScopePersonal,
		UserID:  &uid,
		Type:    typ,
		Title:   title,
		Message: message,
	}
}

func BroadcastNotification(typ, title, message string) Notification {
	return Notification{
		Scope:   NotificationScopeBroadcast,
		Type:    typ,
		Title:   title,
		Message: message,
	}
}
