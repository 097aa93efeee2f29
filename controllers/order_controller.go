package controllers

import (
	"net/http"
	"strconv"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/middleware"
	"github.com/agromarket/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// ListOrders returns the requesting user's orders, paginated.
func (oc *OrderController) ListOrders(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	resp, err := oc.Orders.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder returns one of the requesting user's orders.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errs.Respond(c, errs.ErrValidation.Wrap(err))
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
