package services

import (
	"context"
	"errors"
	"testing"

	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQRCodeURL = "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=" +
	"29240112345678000199650010000012341234567890|2|1|1"

type fakeStrategy struct {
	name   string
	result StrategyResult
	calls  int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, input StrategyInput) StrategyResult {
	f.calls++
	return f.result
}

type fakeCache struct {
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.entries[key]; ok {
		return v, nil
	}
	return "", errors.New("miss")
}

func (f *fakeCache) Set(ctx context.Context, key, value string) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) Clear(ctx context.Context) error {
	f.entries = make(map[string]string)
	return nil
}

func (f *fakeCache) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"entries": len(f.entries)}, nil
}

func (f *fakeCache) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func newTestService(strategies ...ExtractionStrategy) NFCeServiceInterface {
	return NewNFCeService(strategies, nil, NewMetrics(prometheus.NewRegistry()), testLogger())
}

func TestConsultFirstSuccessWins(t *testing.T) {
	expected := []models.Product{
		{Name: "Arroz Tipo 1", Price: 25.50, Stock: 1},
		{Name: "Refrigerante Cola 2L", Price: 8.99, Stock: 2, NCM: "22021000"},
	}

	protocol := &fakeStrategy{name: "protocol-query", result: Empty()}
	fetch := &fakeStrategy{name: "document-fetch", result: Success(expected)}
	render := &fakeStrategy{name: "rendered-page", result: Success([]models.Product{{Name: "should not appear", Price: 1}})}

	service := newTestService(protocol, fetch, render)

	products, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Arroz Tipo 1", products[0].Name)
	assert.Equal(t, "Refrigerante Cola 2L", products[1].Name)

	assert.Equal(t, 1, protocol.calls)
	assert.Equal(t, 1, fetch.calls)
	assert.Equal(t, 0, render.calls, "later strategies must not run after a success")
}

func TestConsultAppliesCategories(t *testing.T) {
	fetch := &fakeStrategy{name: "document-fetch", result: Success([]models.Product{
		{Name: "Refrigerante Cola 2L", Price: 8.99, NCM: "22021000"},
		{Name: "Detergente Ypê 500ml", Price: 2.49},
		{Name: "Produto Misterioso", Price: 1.00},
	})}

	service := newTestService(fetch)

	products, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Bebidas", products[0].Category)
	assert.Equal(t, "Limpeza", products[1].Category)
	assert.Equal(t, "Outros", products[2].Category)
}

func TestConsultNCMWinsOverName(t *testing.T) {
	// the name says beverage, the fiscal code says hygiene
	fetch := &fakeStrategy{name: "document-fetch", result: Success([]models.Product{
		{Name: "Suco Shampoo", Price: 9.99, NCM: "33051000"},
	})}

	service := newTestService(fetch)

	products, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Higiene", products[0].Category)
}

func TestConsultExhaustedChainReturnsNotFound(t *testing.T) {
	protocol := &fakeStrategy{name: "protocol-query", result: Empty()}
	fetch := &fakeStrategy{name: "document-fetch", result: Empty()}
	markup := &fakeStrategy{name: "markup-heuristic", result: Empty()}

	service := newTestService(protocol, fetch, markup)

	_, err := service.Consult(context.Background(), testQRCodeURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, 1, markup.calls)
}

func TestConsultFailedStrategyFallsThrough(t *testing.T) {
	protocol := &fakeStrategy{name: "protocol-query", result: Failed(errors.New("endpoint down"))}
	fetch := &fakeStrategy{name: "document-fetch", result: Success([]models.Product{{Name: "Arroz", Price: 10}})}

	service := newTestService(protocol, fetch)

	products, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestConsultFinalStrategyFailureSurfaces(t *testing.T) {
	transportErr := errors.New("connection refused")
	protocol := &fakeStrategy{name: "protocol-query", result: Empty()}
	markup := &fakeStrategy{name: "markup-heuristic", result: Failed(transportErr)}

	service := newTestService(protocol, markup)

	_, err := service.Consult(context.Background(), testQRCodeURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transportErr))
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestConsultMidChainFailureDoesNotSurface(t *testing.T) {
	protocol := &fakeStrategy{name: "protocol-query", result: Failed(errors.New("endpoint down"))}
	markup := &fakeStrategy{name: "markup-heuristic", result: Empty()}

	service := newTestService(protocol, markup)

	_, err := service.Consult(context.Background(), testQRCodeURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestConsultMalformedInput(t *testing.T) {
	fetch := &fakeStrategy{name: "document-fetch", result: Success([]models.Product{{Name: "x", Price: 1}})}

	service := newTestService(fetch)

	_, err := service.Consult(context.Background(), "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=123|2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMalformedInput))
	assert.Equal(t, 0, fetch.calls, "no acquisition may run on malformed input")
}

func TestConsultServesSecondCallFromCache(t *testing.T) {
	fetch := &fakeStrategy{name: "document-fetch", result: Success([]models.Product{
		{Name: "Arroz Tipo 1", Price: 25.50, Stock: 1},
	})}

	cache := newFakeCache()
	service := NewNFCeService([]ExtractionStrategy{fetch}, cache, NewMetrics(prometheus.NewRegistry()), testLogger())

	first, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)

	second, err := service.Consult(context.Background(), testQRCodeURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetch.calls, "second consultation must be served from cache")
}
