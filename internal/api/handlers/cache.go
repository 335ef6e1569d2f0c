package handlers

import (
	"net/http"
	"time"

	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/despensaapp/nfce-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CacheHandler handles cache management requests
type CacheHandler struct {
	cacheService services.CacheServiceInterface
	logger       *logrus.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(cacheService services.CacheServiceInterface, logger *logrus.Logger) *CacheHandler {
	return &CacheHandler{
		cacheService: cacheService,
		logger:       logger,
	}
}

// GetStats returns cache statistics
// @Summary Cache statistics
// @Description Get statistics about the consultation cache
// @Tags Cache
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /cache/stats [get]
func (h *CacheHandler) GetStats(c *gin.Context) {
	stats, err := h.cacheService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Failed to get cache stats",
			Message:   err.Error(),
			Code:      "CACHE_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Clear removes all cached consultations
// @Summary Clear the cache
// @Description Remove all cached consultation results
// @Tags Cache
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /cache/clear [delete]
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.cacheService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Failed to clear cache",
			Message:   err.Error(),
			Code:      "CACHE_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.logger.Info("Cache cleared")
	c.JSON(http.StatusOK, gin.H{
		"message":   "Cache cleared successfully",
		"timestamp": time.Now(),
	})
}

// Delete removes a single cached consultation by access key
// @Summary Delete a cache entry
// @Description Remove the cached consultation for one access key
// @Tags Cache
// @Produce json
// @Param accessKey path string true "44-digit access key"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /cache/{accessKey} [delete]
func (h *CacheHandler) Delete(c *gin.Context) {
	accessKey := c.Param("accessKey")

	if err := h.cacheService.Delete(c.Request.Context(), services.CacheKey(accessKey)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Failed to delete cache entry",
			Message:   err.Error(),
			Code:      "CACHE_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cache entry deleted",
		"timestamp": time.Now(),
	})
}
