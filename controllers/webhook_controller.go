package controllers

import (
	"net/http"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/services"

	"github.com/gin-gonic/gin"
)

// signatureHeader carries the gateway's hex HMAC of the raw body.
const signatureHeader = "X-Gateway-Signature"

type WebhookController struct {
	Webhooks *services.WebhookService
}

func NewWebhookController(webhooks *services.WebhookService) *WebhookController {
	return &WebhookController{Webhooks: webhooks}
}

// HandleGatewayWebhook receives payment status callbacks from the gateway.
func (wc *WebhookController) HandleGatewayWebhook(c *gin.Context) {
	paymentID := c.Param("payment_id")

	body, err := c.GetRawData()
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	signature := c.GetHeader(signatureHeader)
	if err := wc.Webhooks.Process(c.Request.Context(), paymentID, body, signature); err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
