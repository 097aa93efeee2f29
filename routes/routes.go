package routes

import (
	"github.com/agromarket/backend/controllers"
	"github.com/agromarket/backend/middleware"

	"github.com/gin-gonic/gin"
)

// Register wires the HTTP surface. Cart routes work for anonymous sessions;
// checkout and orders require an authenticated user. The webhook route is
// unauthenticated but signature-checked in the service.
func Register(
	r *gin.Engine,
	cartController *controllers.CartController,
	checkoutController *controllers.CheckoutController,
	orderController *controllers.OrderController,
	webhookController *controllers.WebhookController,
) {
	r.Use(middleware.Identity())

	cart := r.Group("/cart")
	{
		cart.GET("/", cartController.GetCart)
		cart.POST("/add/", cartController.AddItem)
		cart.POST("/update/", cartController.UpdateItem)
		cart.POST("/remove/", cartController.RemoveItem)
	}

	payments := r.Group("/payments")
	payments.POST("/webhook/:payment_id/", webhookController.HandleGatewayWebhook)

	checkoutLimiter := middleware.RateLimitMiddleware()

	authed := payments.Group("")
	authed.Use(middleware.RequireUser())
	{
		authed.GET("/checkout/", checkoutController.GetCheckout)
		authed.POST("/checkout/", checkoutLimiter, checkoutController.PostCheckout)
		authed.POST("/buy-now/:product_id/", checkoutLimiter, checkoutController.BuyNow)
		authed.GET("/orders/", orderController.ListOrders)
		authed.GET("/orders/:id/", orderController.GetOrder)
	}
}
