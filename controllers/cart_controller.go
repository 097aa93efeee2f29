package controllers

import (
	"fmt"
	"net/http"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/middleware"
	"github.com/agromarket/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartController struct {
	Carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// GetCart returns the cart summary with totals for the current owner.
func (cc *CartController) GetCart(c *gin.Context) {
	owner := middleware.CartOwner(c)

	summary, err := cc.Carts.Summary(c.Request.Context(), owner)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddItem adds a quantity of a product to the cart.
func (cc *CartController) AddItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	owner := middleware.CartOwner(c)
	ctx := c.Request.Context()

	product, err := cc.Carts.Add(ctx, owner, productID, req.Quantity)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	count, err := cc.Carts.Count(ctx, owner)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("%d x %s added to cart", req.Quantity, product.Name),
		"cart_count": count,
	})
}

// UpdateItem sets the absolute quantity of a cart line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	owner := middleware.CartOwner(c)
	ctx := c.Request.Context()

	if err := cc.Carts.Update(ctx, owner, productID, req.Quantity); err != nil {
		errs.Respond(c, err)
		return
	}

	count, err := cc.Carts.Count(ctx, owner)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Cart updated successfully",
		"cart_count": count,
	})
}

// RemoveItem removes a cart line. Absent lines are a no-op.
func (cc *CartController) RemoveItem(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	owner := middleware.CartOwner(c)
	ctx := c.Request.Context()

	if err := cc.Carts.Remove(ctx, owner, productID); err != nil {
		errs.Respond(c, err)
		return
	}

	count, err := cc.Carts.Count(ctx, owner)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Item removed from cart",
		"cart_count": count,
	})
}
