package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/despensaapp/nfce-api/internal/services"
	"github.com/despensaapp/nfce-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NFCeHandler handles receipt consultation requests
type NFCeHandler struct {
	nfceService services.NFCeServiceInterface
	logger      *logrus.Logger
}

// NewNFCeHandler creates a new NFC-e handler
func NewNFCeHandler(nfceService services.NFCeServiceInterface, logger *logrus.Logger) *NFCeHandler {
	return &NFCeHandler{
		nfceService: nfceService,
		logger:      logger,
	}
}

// Consult handles receipt consultation
// @Summary Consult an NFC-e receipt
// @Description Resolve a scanned QR code URL into the products printed on the receipt
// @Tags NFCe
// @Accept json
// @Produce json
// @Param request body models.ConsultRequest true "Scanned QR code URL"
// @Success 200 {object} models.ConsultResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /nfce/consult [post]
func (h *NFCeHandler) Consult(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var req models.ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid request body",
			Message:   "Field 'qr_code_url' is required",
			Code:      "INVALID_BODY",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if !utils.IsFiscalURL(req.QRCodeURL) {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"url":        req.QRCodeURL,
		}).Warn("Rejected non-fiscal URL")

		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid QR code URL",
			Message:   "The URL does not point to a fiscal document portal",
			Code:      "INVALID_URL",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        req.QRCodeURL,
	}).Info("Processing receipt consultation")

	products, err := h.nfceService.Consult(c.Request.Context(), req.QRCodeURL)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"duration":   time.Since(start),
		}).Error("Receipt consultation failed")

		switch {
		case errors.Is(err, models.ErrMalformedInput):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "Malformed QR code payload",
				Message:   "The QR code URL does not carry a decodable access key",
				Code:      "MALFORMED_INPUT",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "No products found",
				Message:   "Every acquisition source was exhausted without finding products",
				Code:      "NOT_FOUND",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "Internal server error",
				Message:   "An unexpected error occurred while processing your request",
				Code:      "INTERNAL_ERROR",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.ConsultResponse{
		Products:   products,
		Count:      len(products),
		DurationMs: time.Since(start).Milliseconds(),
	})
}
