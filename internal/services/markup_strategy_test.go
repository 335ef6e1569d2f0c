package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markupStrategyForTest() *MarkupHeuristicStrategy {
	return NewMarkupHeuristicStrategy(config.NFCeConfig{
		MarkupTimeout: 5 * time.Second,
		UserAgent:     "test-agent",
	}, testLogger())
}

func TestMarkupHeuristicStrategySuccess(t *testing.T) {
	page := `<html><body><table>
		<tr><td>ARROZ BRANCO</td><td>Qtde.: 2</td><td>VI. Unit.: 12,50</td></tr>
		<tr><td>FEIJAO CARIOCA</td><td>Qtde.: 1</td><td>VI. Unit.: 8,90</td></tr>
	</table></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(page))
	}))
	defer server.Close()

	s := markupStrategyForTest()

	result := s.Attempt(context.Background(), StrategyInput{
		QRCodeURL: server.URL,
		Params:    &models.AccessKeyParams{AccessKey: testFetchKey},
	})
	require.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "ARROZ BRANCO", result.Products[0].Name)
}

func TestMarkupHeuristicStrategyEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Documento nao encontrado</p></body></html>"))
	}))
	defer server.Close()

	s := markupStrategyForTest()

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: server.URL})
	assert.Equal(t, OutcomeEmpty, result.Outcome)
	assert.NoError(t, result.Err)
}

func TestMarkupHeuristicStrategyTransportFailureSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	s := markupStrategyForTest()

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: server.URL})
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Error(t, result.Err)
}

func TestMarkupHeuristicStrategyErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := markupStrategyForTest()

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: server.URL})
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Error(t, result.Err)
}
