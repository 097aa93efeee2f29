package services

import (
	"context"
	"encoding/json"
	"net/http"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"go.uber.org/zap"
)

var errPaymentNotFound = errs.New(http.StatusNotFound, "Payment not found", nil)
var errUnknownWebhookStatus = errs.New(http.StatusBadRequest, "Unknown payment status", nil)

// WebhookPayload is the gateway's callback body. The raw body is stored on
// the payment verbatim for audit.
type WebhookPayload struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// webhookOutcome maps a gateway status to the resulting payment and order
// statuses. A nil order status leaves the order untouched.
type webhookOutcome struct {
	payment models.PaymentStatus
	order   models.OrderStatus
}

var webhookOutcomes = map[string]webhookOutcome{
	"completed": {payment: models.PaymentCompleted, order: models.OrderConfirmed},
	"failed":    {payment: models.PaymentFailed},
	"cancelled": {payment: models.PaymentCancelled, order: models.OrderCancelled},
	"refunded":  {payment: models.PaymentRefunded, order: models.OrderRefunded},
}

// WebhookService applies gateway callbacks to payments and orders. The
// signature check runs before anything else; an unverified payload causes
// zero state change. Deliveries against a payment already in a terminal
// status are acknowledged without effect, so duplicates are safe.
type WebhookService struct {
	store   repository.Datastore
	gateway *GatewayAdapter
	logger  *zap.Logger
}

func NewWebhookService(store repository.Datastore, gateway *GatewayAdapter, logger *zap.Logger) *WebhookService {
	return &WebhookService{store: store, gateway: gateway, logger: logger}
}

// Process handles one webhook delivery for the given payment id.
func (s *WebhookService) Process(ctx context.Context, paymentID string, body []byte, signature string) error {
	payment, err := s.store.Payments().FindByPaymentID(ctx, paymentID)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	if payment == nil {
		return errPaymentNotFound
	}

	if !s.gateway.VerifySignature(body, signature) {
		s.logger.Warn("webhook signature verification failed",
			zap.String("payment_id", paymentID),
			zap.String("ip", payment.IPAddress),
		)
		return errs.ErrWebhookSignature
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errs.ErrValidation.Wrap(err)
	}

	outcome, known := webhookOutcomes[payload.Status]
	if !known {
		return errUnknownWebhookStatus
	}

	if models.TerminalPaymentStatuses[payment.Status] {
		s.logger.Info("skipping webhook for terminal payment",
			zap.String("payment_id", paymentID),
			zap.String("status", string(payment.Status)),
		)
		return nil
	}

	err = s.store.Atomically(ctx, func(tx repository.Datastore) error {
		raw := string(body)
		payment.Status = outcome.payment
		payment.GatewayResponse = &raw
		if payload.TransactionID != "" {
			payment.TransactionID = payload.TransactionID
		}
		if err := tx.Payments().Update(ctx, payment); err != nil {
			return err
		}

		if outcome.order != "" {
			order, err := tx.Orders().FindByID(ctx, payment.OrderID)
			if err != nil {
				return err
			}
			if order != nil && models.CanTransition(order.Status, outcome.order) {
				if err := tx.Orders().UpdateStatus(ctx, order.ID, outcome.order); err != nil {
					return err
				}
			}
		}

		if outcome.payment == models.PaymentCompleted {
			// The originating cart is only cleared once the gateway confirms.
			if err := tx.Carts().Clear(ctx, models.UserOwner(payment.CustomerID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}

	s.logger.Info("webhook processed",
		zap.String("payment_id", paymentID),
		zap.String("gateway_status", payload.Status),
	)
	return nil
}
