package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// rateLimitWindow is the sliding lookback for payment attempts.
	rateLimitWindow = 15 * time.Minute
	// maxPaymentAttempts within the window before checkout is refused.
	maxPaymentAttempts = 10
)

var errAmountOutsideLimits = errs.New(http.StatusBadRequest, "Amount outside payment method limits", nil)
var errPaymentMethodNotFound = errs.New(http.StatusNotFound, "Payment method not found", nil)

// CheckoutRequest is the client's checkout submission.
type CheckoutRequest struct {
	PaymentMethodID uuid.UUID `json:"payment_method_id" binding:"required"`
	UseBalance      bool      `json:"use_balance"`
	ShippingAddress string    `json:"shipping_address"`
	BillingAddress  string    `json:"billing_address"`
	Notes           string    `json:"notes"`
	Quantity        int       `json:"quantity"`
}

// RequestMeta carries the request-scoped signals the security gates need.
// Now is injected so time-dependent checks stay testable.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Now       time.Time
}

// CheckoutResult is what a successful checkout returns. Completed orders
// (balance path) carry the order number; pending ones (gateway path) carry
// the payment id and processor redirect.
type CheckoutResult struct {
	OrderNumber string `json:"order_number,omitempty"`
	PaymentID   string `json:"payment_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Message     string `json:"message,omitempty"`
	Completed   bool   `json:"-"`
}

// stockClaim marks a buy-now checkout's pending stock decrement.
type stockClaim struct {
	productID uuid.UUID
	quantity  int
}

// CheckoutService turns a cart or a single product into an order with a
// payment. Every gate runs before the transaction opens; rejection leaves
// no rows behind.
type CheckoutService struct {
	store   repository.Datastore
	carts   *CartService
	gateway *GatewayAdapter
	logger  *zap.Logger
}

func NewCheckoutService(store repository.Datastore, carts *CartService, gateway *GatewayAdapter, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:   store,
		carts:   carts,
		gateway: gateway,
		logger:  logger,
	}
}

// CheckoutCart places an order for everything in the user's cart.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID uuid.UUID, req CheckoutRequest, meta RequestMeta) (*CheckoutResult, error) {
	owner := models.UserOwner(userID)
	lines, err := s.carts.Items(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}
	return s.checkout(ctx, userID, lines, nil, req, meta)
}

// BuyNow places an order for a single product, bypassing the cart. The
// stock pre-check here is advisory; the conditional decrement inside the
// transaction is what actually prevents overselling.
func (s *CheckoutService) BuyNow(ctx context.Context, userID, productID uuid.UUID, req CheckoutRequest, meta RequestMeta) (*CheckoutResult, error) {
	qty := req.Quantity
	if qty < 1 {
		return nil, errQuantityTooLow
	}

	product, err := s.store.Products().FindActiveByID(ctx, productID)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	if product == nil {
		return nil, errProductNotFound
	}
	if product.QuantityAvailable < qty {
		return nil, errs.ErrInsufficientStock
	}

	line := models.CartLine{
		Product:   *product,
		Quantity:  qty,
		LineTotal: product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2),
	}
	return s.checkout(ctx, userID, []models.CartLine{line}, &stockClaim{productID: productID, quantity: qty}, req, meta)
}

func (s *CheckoutService) checkout(ctx context.Context, userID uuid.UUID, lines []models.CartLine, claim *stockClaim, req CheckoutRequest, meta RequestMeta) (*CheckoutResult, error) {
	fromCart := claim == nil

	if err := s.checkRateLimit(ctx, userID, meta); err != nil {
		return nil, err
	}

	totals := ComputeTotals(lines)

	method, err := s.store.PaymentMethods().FindActiveByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	if method == nil {
		return nil, errPaymentMethodNotFound
	}

	if req.UseBalance {
		balance, err := s.store.Balances().Get(ctx, userID)
		if err != nil {
			return nil, errs.ErrInternalServer.Wrap(err)
		}
		if balance == nil {
			return nil, errs.ErrNoBalanceAccount
		}
		if !balance.CanAfford(totals.GrandTotal) {
			return nil, errs.ErrInsufficientBalance
		}
	} else if totals.GrandTotal.LessThan(method.MinAmount) || totals.GrandTotal.GreaterThan(method.MaxAmount) {
		return nil, errAmountOutsideLimits
	}

	if err := s.checkFraud(ctx, userID, totals.GrandTotal, meta); err != nil {
		return nil, err
	}

	var result *CheckoutResult
	err = s.store.Atomically(ctx, func(tx repository.Datastore) error {
		order := &models.Order{
			OrderNumber:     models.NewOrderNumber(),
			CustomerID:      userID,
			Subtotal:        totals.Subtotal,
			ShippingFee:     totals.Shipping,
			TaxAmount:       totals.Tax,
			GrandTotal:      totals.GrandTotal,
			Status:          models.OrderPending,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			Notes:           req.Notes,
		}
		for _, line := range lines {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:  line.Product.ID,
				Quantity:   line.Quantity,
				UnitPrice:  line.Product.Price,
				TotalPrice: line.LineTotal,
			})
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return errs.ErrInternalServer.Wrap(err)
		}

		if claim != nil {
			ok, err := tx.Products().DecrementStock(ctx, claim.productID, claim.quantity)
			if err != nil {
				return errs.ErrInternalServer.Wrap(err)
			}
			if !ok {
				return errs.ErrInsufficientStock
			}
		}

		if req.UseBalance {
			res, err := s.completeWithBalance(ctx, tx, userID, order, method, totals, meta, fromCart)
			if err != nil {
				return err
			}
			result = res
			return nil
		}

		res, err := s.beginWithGateway(ctx, tx, userID, order, method, totals, meta)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout completed",
		zap.String("order_number", result.OrderNumber),
		zap.String("payment_id", result.PaymentID),
		zap.String("user_id", userID.String()),
		zap.Bool("use_balance", req.UseBalance),
		zap.String("grand_total", totals.GrandTotal.StringFixed(2)),
	)
	return result, nil
}

// completeWithBalance debits the internal balance and records a payment
// that is already final. Runs inside the checkout transaction.
func (s *CheckoutService) completeWithBalance(ctx context.Context, tx repository.Datastore, userID uuid.UUID, order *models.Order, method *models.PaymentMethod, totals Totals, meta RequestMeta, fromCart bool) (*CheckoutResult, error) {
	ok, err := tx.Balances().Debit(ctx, userID, totals.GrandTotal)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	if !ok {
		return nil, errs.ErrInsufficientBalance
	}

	paymentID := models.NewPaymentID()
	payment := &models.Payment{
		PaymentID:       paymentID,
		OrderID:         order.ID,
		CustomerID:      userID,
		PaymentMethodID: method.ID,
		Amount:          totals.GrandTotal,
		ProcessingFee:   decimal.Zero,
		TotalAmount:     totals.GrandTotal,
		Status:          models.PaymentCompleted,
		TransactionID:   fmt.Sprintf("BAL-%d", meta.Now.Unix()),
		SecurityHash:    models.SecurityHashFor(paymentID, order.OrderNumber, userID, totals.GrandTotal),
		IPAddress:       meta.IPAddress,
		UserAgent:       meta.UserAgent,
	}
	if err := tx.Payments().Create(ctx, payment); err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	if fromCart {
		if err := tx.Carts().Clear(ctx, models.UserOwner(userID)); err != nil {
			return nil, errs.ErrInternalServer.Wrap(err)
		}
	}

	return &CheckoutResult{
		OrderNumber: order.OrderNumber,
		Message:     "Order placed successfully using account balance",
		Completed:   true,
	}, nil
}

// beginWithGateway records a pending payment and logs the attempt. The cart
// stays intact until the gateway webhook confirms. Runs inside the checkout
// transaction.
func (s *CheckoutService) beginWithGateway(ctx context.Context, tx repository.Datastore, userID uuid.UUID, order *models.Order, method *models.PaymentMethod, totals Totals, meta RequestMeta) (*CheckoutResult, error) {
	fee := method.CalculateFees(totals.GrandTotal)
	paymentID := models.NewPaymentID()
	payment := &models.Payment{
		PaymentID:       paymentID,
		OrderID:         order.ID,
		CustomerID:      userID,
		PaymentMethodID: method.ID,
		Amount:          totals.GrandTotal,
		ProcessingFee:   fee,
		TotalAmount:     totals.GrandTotal.Add(fee),
		Status:          models.PaymentPending,
		SecurityHash:    models.SecurityHashFor(paymentID, order.OrderNumber, userID, totals.GrandTotal),
		IPAddress:       meta.IPAddress,
		UserAgent:       meta.UserAgent,
	}
	if err := tx.Payments().Create(ctx, payment); err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	details, _ := json.Marshal(map[string]any{
		"order_id": order.ID.String(),
		"amount":   totals.GrandTotal.StringFixed(2),
	})
	if err := tx.Security().Log(ctx, &models.SecurityEvent{
		EventType: models.EventPaymentAttempt,
		UserID:    &userID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   string(details),
	}); err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	return &CheckoutResult{
		PaymentID:   paymentID,
		RedirectURL: s.gateway.RedirectURL(paymentID),
	}, nil
}

// checkRateLimit enforces the sliding payment-attempt window.
func (s *CheckoutService) checkRateLimit(ctx context.Context, userID uuid.UUID, meta RequestMeta) error {
	since := meta.Now.Add(-rateLimitWindow)
	attempts, err := s.store.Security().CountRecentAttempts(ctx, userID, since)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	if attempts <= maxPaymentAttempts {
		return nil
	}

	details, _ := json.Marshal(map[string]any{"attempts": attempts})
	if err := s.store.Security().Log(ctx, &models.SecurityEvent{
		EventType: models.EventRateLimitExceeded,
		UserID:    &userID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   string(details),
		RiskScore: 80,
	}); err != nil {
		s.logger.Warn("failed to log rate limit event", zap.Error(err))
	}
	return errs.ErrRateLimited
}

// checkFraud runs the scoring heuristic and rejects above the threshold.
func (s *CheckoutService) checkFraud(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, meta RequestMeta) error {
	blocked, err := s.store.Security().IsIPBlocked(ctx, meta.IPAddress)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}

	score, indicators := ScoreTransaction(ScoreInput{
		IPBlocked: blocked,
		UserAgent: meta.UserAgent,
		Amount:    amount,
		Hour:      meta.Now.Hour(),
	})
	if score <= FraudThreshold {
		return nil
	}

	details, _ := json.Marshal(map[string]any{
		"risk_score": score,
		"indicators": indicators,
	})
	if err := s.store.Security().Log(ctx, &models.SecurityEvent{
		EventType: models.EventFraudDetection,
		UserID:    &userID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   string(details),
		RiskScore: score,
	}); err != nil {
		s.logger.Warn("failed to log fraud event", zap.Error(err))
	}

	s.logger.Warn("checkout rejected by fraud heuristic",
		zap.String("user_id", userID.String()),
		zap.Int("risk_score", score),
		zap.Strings("indicators", indicators),
	)
	return errs.ErrSecurityReview
}
