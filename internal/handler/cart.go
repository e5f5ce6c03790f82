package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/middleware"
	"github.com/diamond-electronics/storefront-api/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCartResponse(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.svc.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.writeCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusCreated, userID)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.svc.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity); err != nil {
		h.writeCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.svc.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		h.writeCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// respondWithCart returns the full cart after every mutation so the client
// never has to reconcile partial state.
func (h *CartHandler) respondWithCart(c *gin.Context, status int, userID uuid.UUID) {
	cart, err := h.svc.GetCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, dto.ToCartResponse(cart))
}

func (h *CartHandler) writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not available"})
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock"})
	case errors.Is(err, service.ErrQuantityLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity limit exceeded"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
