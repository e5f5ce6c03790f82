package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/middleware"
	"github.com/diamond-electronics/storefront-api/internal/service"
)

type CheckoutHandler struct {
	svc *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shippingFee := decimal.Zero
	if req.ShippingFee != nil {
		shippingFee = *req.ShippingFee
	}

	order, err := h.svc.Checkout(c.Request.Context(), middleware.GetUserID(c), req.Address.ToModel(), shippingFee)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock"})
		case errors.Is(err, service.ErrInvalidShippingFee):
			c.JSON(http.StatusBadRequest, gin.H{"error": "shipping fee must not be negative"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}
