package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	leafResult  []renderedCandidate
	tableResult []renderedCandidate
	navigateErr error
	evaluateErr error

	evaluations int
	closed      bool
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return f.navigateErr }

func (f *fakeSession) WaitSettled(ctx context.Context) error { return nil }

func (f *fakeSession) Evaluate(ctx context.Context, script string, out interface{}) error {
	f.evaluations++
	if f.evaluateErr != nil {
		return f.evaluateErr
	}
	target := out.(*[]renderedCandidate)
	if f.evaluations == 1 {
		*target = f.leafResult
	} else {
		*target = f.tableResult
	}
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

type fakeBrowser struct {
	session    *fakeSession
	sessionErr error
}

func (f *fakeBrowser) NewSession(ctx context.Context) (BrowserSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeBrowser) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func (f *fakeBrowser) Close() error { return nil }

func renderStrategyForTest(browser BrowserServiceInterface) *RenderedPageStrategy {
	return NewRenderedPageStrategy(browser, config.BrowserConfig{Timeout: 5 * time.Second}, testLogger())
}

func TestRenderedPageStrategySuccess(t *testing.T) {
	session := &fakeSession{
		leafResult: []renderedCandidate{
			{Name: "Arroz Tipo 1", Code: "123", Price: 25.50, Quantity: 1},
			{Name: "Feijao Carioca", Price: 8.90, Quantity: 2},
		},
	}
	s := renderStrategyForTest(&fakeBrowser{session: session})

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: testQRCodeURL})
	require.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, result.Products, 2)

	assert.Equal(t, "Arroz Tipo 1", result.Products[0].Name)
	assert.Equal(t, "Código: 123", result.Products[0].Description)
	assert.Equal(t, 2, result.Products[1].Stock)
	assert.True(t, session.closed, "session must be closed after use")
	assert.Equal(t, 1, session.evaluations, "table fallback must not run when leaves match")
}

func TestRenderedPageStrategyTableFallback(t *testing.T) {
	session := &fakeSession{
		tableResult: []renderedCandidate{
			{Name: "Macarrao Espaguete", Price: 6.75, Quantity: 1},
		},
	}
	s := renderStrategyForTest(&fakeBrowser{session: session})

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: testQRCodeURL})
	require.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, result.Products, 1)
	assert.Equal(t, 2, session.evaluations)
	assert.True(t, session.closed)
}

func TestRenderedPageStrategyEmpty(t *testing.T) {
	session := &fakeSession{}
	s := renderStrategyForTest(&fakeBrowser{session: session})

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: testQRCodeURL})
	assert.Equal(t, OutcomeEmpty, result.Outcome)
	assert.True(t, session.closed)
}

func TestRenderedPageStrategySessionUnavailable(t *testing.T) {
	s := renderStrategyForTest(&fakeBrowser{sessionErr: errors.New("no chrome")})

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: testQRCodeURL})
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Error(t, result.Err)
}

func TestRenderedPageStrategyClosesSessionOnNavigationError(t *testing.T) {
	session := &fakeSession{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	s := renderStrategyForTest(&fakeBrowser{session: session})

	result := s.Attempt(context.Background(), StrategyInput{QRCodeURL: testQRCodeURL})
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.True(t, session.closed, "session must be closed on error paths too")
}

func TestDedupCandidates(t *testing.T) {
	products := DedupCandidates([]renderedCandidate{
		{Name: "Arroz Tipo 1", Price: 9.99, Quantity: 1},
		{Name: "Arroz Tipo 1 5kg", Price: 9.99, Quantity: 1},
		{Name: "Arroz Tipo 1", Price: 15.00, Quantity: 1},
	})

	// same price within a cent and a shared name prefix collapse; a different
	// price keeps the record
	require.Len(t, products, 2)
	assert.Equal(t, "Arroz Tipo 1", products[0].Name)
	assert.InDelta(t, 9.99, products[0].Price, 0.001)
	assert.InDelta(t, 15.00, products[1].Price, 0.001)
}

func TestDedupCandidatesFiltersUnusable(t *testing.T) {
	products := DedupCandidates([]renderedCandidate{
		{Name: "ab", Price: 9.99},
		{Name: "Produto Valido", Price: 0},
		{Name: "Produto Valido", Price: 3.50, Quantity: 0},
	})

	require.Len(t, products, 1)
	assert.Equal(t, "Produto Valido", products[0].Name)
	assert.Equal(t, 1, products[0].Stock, "zero quantity defaults to one")
}
