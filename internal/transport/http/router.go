package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/handlers"
	"github.com/rahmatfadhil/gostore/internal/handlers/cart"
	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/models"
)

type Deps struct {
	DB                  *gorm.DB
	Auth                *mwauth.Middleware
	AuthHandler         *handlers.AuthHandler
	ProductHandler      *handlers.ProductHandler
	ServiceHandler      *handlers.ServiceHandler
	OrderHandler        *handlers.OrderHandler
	PaymentHandler      *handlers.PaymentHandler
	NotificationHandler *handlers.NotificationHandler
	ReportHandler       *handlers.ReportHandler
	SearchHandler       *handlers.SearchHandler
	CartHandler         *cart.CartHandler
	UploadDir           string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })
	e.Static("/uploads", d.UploadDir)

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	services := v1.Group("/services")
	services.GET("", d.ServiceHandler.GetServices)
	services.GET("/:id", d.ServiceHandler.GetService)

	authed := v1.Group("", d.Auth.Authenticate)

	cartGroup := authed.Group("/cart")
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.POST("/checkout", d.CartHandler.Checkout)
	cartGroup.DELETE("/:id", d.CartHandler.DeleteOneFromCart)
	cartGroup.DELETE("/:id/all", d.CartHandler.DeleteAllFromCart)

	orders := authed.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
	orders.POST("/:id/payment-proof", d.OrderHandler.SubmitPaymentProof)

	notifications := authed.Group("/notifications")
	notifications.GET("", d.NotificationHandler.List)
	notifications.GET("/unread-count", d.NotificationHandler.UnreadCount)
	notifications.POST("/:id/read", d.NotificationHandler.MarkRead)

	staff := authed.Group("", mwauth.RequireRole(models.RoleAdmin, models.RoleFinance, models.RoleOwner))
	staff.GET("/payments", d.PaymentHandler.ListPending)
	staff.PATCH("/payments/:id", d.PaymentHandler.PatchPayment)

	finance := authed.Group("/reports", mwauth.RequireRole(models.RoleFinance, models.RoleOwner))
	finance.GET("/sales", d.ReportHandler.Sales)

	admin := authed.Group("/admin", mwauth.RequireRole(models.RoleAdmin, models.RoleOwner))
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/services", d.ServiceHandler.CreateService)
	admin.PATCH("/services/:id", d.ServiceHandler.PatchService)
	admin.DELETE("/services/:id", d.ServiceHandler.DeleteService)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
