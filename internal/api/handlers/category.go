package handlers

import (
	"net/http"
	"time"

	"github.com/despensaapp/nfce-api/internal/category"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CategoryHandler handles category inference requests
type CategoryHandler struct {
	logger *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{logger: logger}
}

// Infer handles category inference for a product name and optional NCM code
// @Summary Infer a product category
// @Description Classify a product by its fiscal NCM code when given, falling back to name keywords
// @Tags Categories
// @Produce json
// @Param name query string true "Product name" example(Refrigerante Cola 2L)
// @Param ncm query string false "Fiscal NCM code" example(22021000)
// @Success 200 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /categories/infer [get]
func (h *CategoryHandler) Infer(c *gin.Context) {
	name := c.Query("name")
	ncm := c.Query("ncm")

	if name == "" && ncm == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Missing parameters",
			Message:   "At least one of 'name' or 'ncm' is required",
			Code:      "MISSING_PARAMS",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if ncm != "" {
		if cat, ok := category.FromNCM(ncm); ok {
			c.JSON(http.StatusOK, models.CategoryResponse{Category: string(cat)})
			return
		}
	}

	c.JSON(http.StatusOK, models.CategoryResponse{
		Category: string(category.FromName(name)),
	})
}
