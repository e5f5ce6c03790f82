package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/service"
)

type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ListProducts is the public catalog listing. Only ACTIVE products show up.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, total, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toProductListResponse(products, total, req.Page, req.Limit))
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	var req dto.AdminListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, total, err := h.svc.AdminList(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toProductListResponse(products, total, req.Page, req.Limit))
}

func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	product, err := h.svc.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.svc.Update(c.Request.Context(), productID, req)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), productID); err != nil {
		h.writeProductError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) writeProductError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func toProductListResponse(products []model.Product, total, page, limit int) dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.ToProductResponse(&products[i]))
	}
	return dto.ProductListResponse{Products: items, Total: total, Page: page, Limit: limit}
}
