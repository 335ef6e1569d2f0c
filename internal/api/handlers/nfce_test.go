package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNFCeService struct {
	products []models.Product
	err      error
}

func (s *stubNFCeService) Consult(ctx context.Context, qrCodeURL string) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubNFCeService) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func consultRouter(service *stubNFCeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	router.POST("/api/v1/nfce/consult", NewNFCeHandler(service, logger).Consult)
	return router
}

func postConsult(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/nfce/consult", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestConsultHandlerSuccess(t *testing.T) {
	service := &stubNFCeService{products: []models.Product{
		{Name: "Arroz Tipo 1", Price: 25.50, Stock: 1, Category: "Alimentos"},
		{Name: "Refrigerante Cola 2L", Price: 8.99, Stock: 2, Category: "Bebidas"},
	}}

	recorder := postConsult(t, consultRouter(service), models.ConsultRequest{
		QRCodeURL: "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=x|2|1|1",
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	var response models.ConsultResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "Arroz Tipo 1", response.Products[0].Name)
}

func TestConsultHandlerMalformedInput(t *testing.T) {
	service := &stubNFCeService{err: fmt.Errorf("%w: bad payload", models.ErrMalformedInput)}

	recorder := postConsult(t, consultRouter(service), models.ConsultRequest{
		QRCodeURL: "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=x",
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "MALFORMED_INPUT", response.Code)
}

func TestConsultHandlerNotFound(t *testing.T) {
	service := &stubNFCeService{err: fmt.Errorf("%w: exhausted", models.ErrNotFound)}

	recorder := postConsult(t, consultRouter(service), models.ConsultRequest{
		QRCodeURL: "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=x|2|1|1",
	})

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "NOT_FOUND", response.Code)
}

func TestConsultHandlerUnexpectedError(t *testing.T) {
	service := &stubNFCeService{err: fmt.Errorf("connection refused")}

	recorder := postConsult(t, consultRouter(service), models.ConsultRequest{
		QRCodeURL: "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=x|2|1|1",
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestConsultHandlerRejectsNonFiscalURL(t *testing.T) {
	service := &stubNFCeService{}

	recorder := postConsult(t, consultRouter(service), models.ConsultRequest{
		QRCodeURL: "https://example.com/precos",
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_URL", response.Code)
}

func TestConsultHandlerMissingBody(t *testing.T) {
	recorder := postConsult(t, consultRouter(&stubNFCeService{}), map[string]string{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
