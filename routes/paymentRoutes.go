package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// PaymentRoutes sets up the checkout routes. The success callback is
// unauthenticated: the gateway redirect may arrive without a session
// cookie, and settling is idempotent and identity-independent.
func PaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payment := r.Group("/api/payment")
	{
		payment.POST("/create-checkout-session", middlewares.AuthMiddleware(), pc.CreateCheckoutSession)
		payment.POST("/payment-success", pc.PaymentSuccess)
	}
}
