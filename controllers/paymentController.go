package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/middlewares"
	"civicfix-be/services"
)

type PaymentController struct {
	Payments *services.PaymentService
}

// CreateCheckoutSession opens a gateway session for a boost or a
// premium subscription and returns the redirect URL.
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var input struct {
		Purpose string `json:"purpose" binding:"required"`
		IssueID string `json:"issueId,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	identity := middlewares.Identity(c)

	var checkout *services.Checkout
	var err error
	switch input.Purpose {
	case "boost":
		issueID, convErr := primitive.ObjectIDFromHex(input.IssueID)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
			return
		}
		checkout, err = pc.Payments.InitiateBoost(ctx, issueID, identity)
	case "subscribe":
		checkout, err = pc.Payments.InitiateSubscription(ctx, identity)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment purpose"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": checkout.URL, "payment": checkout.Payment})
}

// PaymentSuccess settles a session after the gateway redirect. Safe to
// call any number of times for the same session.
func (pc *PaymentController) PaymentSuccess(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := pc.Payments.ConfirmPayment(ctx, input.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
