package controllers

import (
	"net/http"
	"strconv"
	"time"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/middleware"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"
	"github.com/agromarket/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
	Carts    *services.CartService
	Store    repository.Datastore
}

func NewCheckoutController(checkout *services.CheckoutService, carts *services.CartService, store repository.Datastore) *CheckoutController {
	return &CheckoutController{Checkout: checkout, Carts: carts, Store: store}
}

// requestMeta collects the security-relevant request signals.
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Now:       time.Now(),
	}
}

// GetCheckout returns the checkout quote: the lines about to be ordered,
// their totals, the active payment methods, and the user's balance.
// Supports ?buy_now=true&product_id=&quantity= for single-product checkout.
func (cc *CheckoutController) GetCheckout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctx := c.Request.Context()

	var lines []models.CartLine
	if c.Query("buy_now") == "true" {
		productID, err := uuid.Parse(c.Query("product_id"))
		if err != nil {
			errs.Respond(c, errs.ErrValidation.Wrap(err))
			return
		}
		qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
		if err != nil || qty < 1 {
			errs.Respond(c, errs.ErrValidation)
			return
		}

		product, err := cc.Store.Products().FindActiveByID(ctx, productID)
		if err != nil {
			errs.Respond(c, errs.ErrInternalServer.Wrap(err))
			return
		}
		if product == nil {
			errs.Respond(c, errs.ErrNotFound)
			return
		}
		if product.QuantityAvailable < qty {
			errs.Respond(c, errs.ErrInsufficientStock)
			return
		}
		lines = []models.CartLine{{
			Product:   *product,
			Quantity:  qty,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		}}
	} else {
		var err error
		lines, err = cc.Carts.Items(ctx, models.UserOwner(userID))
		if err != nil {
			errs.Respond(c, err)
			return
		}
		if len(lines) == 0 {
			errs.Respond(c, errs.ErrEmptyCart)
			return
		}
	}

	methods, err := cc.Store.PaymentMethods().FindActive(ctx)
	if err != nil {
		errs.Respond(c, errs.ErrInternalServer.Wrap(err))
		return
	}
	balance, err := cc.Store.Balances().Get(ctx, userID)
	if err != nil {
		errs.Respond(c, errs.ErrInternalServer.Wrap(err))
		return
	}

	totals := services.ComputeTotals(lines)
	c.JSON(http.StatusOK, gin.H{
		"items":           lines,
		"subtotal":        totals.Subtotal,
		"shipping":        totals.Shipping,
		"tax":             totals.Tax,
		"grand_total":     totals.GrandTotal,
		"payment_methods": methods,
		"user_balance":    balance,
	})
}

// PostCheckout processes a cart checkout.
func (cc *CheckoutController) PostCheckout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	result, err := cc.Checkout.CheckoutCart(c.Request.Context(), userID, req, requestMeta(c))
	if err != nil {
		errs.Respond(c, err)
		return
	}
	respondCheckout(c, result)
}

// BuyNow processes a single-product checkout.
func (cc *CheckoutController) BuyNow(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := cc.Checkout.BuyNow(c.Request.Context(), userID, productID, req, requestMeta(c))
	if err != nil {
		errs.Respond(c, err)
		return
	}
	respondCheckout(c, result)
}

func respondCheckout(c *gin.Context, result *services.CheckoutResult) {
	if result.Completed {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"order_number": result.OrderNumber,
			"message":      result.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"payment_id":   result.PaymentID,
		"redirect_url": result.RedirectURL,
	})
}
