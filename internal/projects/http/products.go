package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

func (h *Handler) listProducts(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("projectId"))
	items, err := h.products.List(c.Request.Context(), auth.UserFirebaseUID(c), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "products": items, "total": len(items)})
}

func (h *Handler) createProduct(c *gin.Context) {
	var req validation.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	pr, err := h.products.Create(c.Request.Context(), auth.UserFirebaseUID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "product": pr})
}

func (h *Handler) getProduct(c *gin.Context) {
	pr, err := h.products.Get(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "product": pr})
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req validation.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	pr, err := h.products.Update(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "product": pr})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "product deleted"})
}

func (h *Handler) listProductTypes(c *gin.Context) {
	items, err := h.productTypes.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "product_types": items})
}

func (h *Handler) createProductType(c *gin.Context) {
	var req validation.CreateProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	pt, err := h.productTypes.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "product_type": pt})
}
