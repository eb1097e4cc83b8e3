package handler

import (
	"net/http"

	"cashflow_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves the category catalog
type CategoryHandler struct {
	service service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// RegisterCategoryRoutes registers the read-only catalog routes
func (h *CategoryHandler) RegisterCategoryRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/categories", authMW, h.ListCategories)
}
