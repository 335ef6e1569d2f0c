package services

import (
	"context"

	"github.com/despensaapp/nfce-api/internal/models"
)

// StrategyOutcome classifies the result of a single acquisition attempt
type StrategyOutcome string

const (
	// OutcomeSuccess means the strategy produced at least one product
	OutcomeSuccess StrategyOutcome = "success"
	// OutcomeEmpty means the strategy ran but found nothing usable
	OutcomeEmpty StrategyOutcome = "empty"
	// OutcomeFailed means the strategy could not run to completion
	OutcomeFailed StrategyOutcome = "failed"
)

// StrategyResult is the explicit outcome of one strategy attempt. The
// orchestrator treats Failed exactly like Empty for fallback purposes; the
// distinction exists so the continue-on-failure policy is visible and testable
// instead of being a side effect of swallowed errors.
type StrategyResult struct {
	Outcome  StrategyOutcome
	Products []models.Product
	Err      error
}

// Success builds a successful result
func Success(products []models.Product) StrategyResult {
	return StrategyResult{Outcome: OutcomeSuccess, Products: products}
}

// Empty builds an empty (ran, found nothing) result
func Empty() StrategyResult {
	return StrategyResult{Outcome: OutcomeEmpty}
}

// Failed builds a failed result
func Failed(err error) StrategyResult {
	return StrategyResult{Outcome: OutcomeFailed, Err: err}
}

// StrategyInput carries everything a strategy may need: the original QR code
// URL (browser and markup strategies) and the decoded parameters (key-driven
// strategies and fallback URL construction).
type StrategyInput struct {
	QRCodeURL string
	Params    *models.AccessKeyParams
}

// ExtractionStrategy is the contract every acquisition strategy implements.
// Attempt must be side-effect free with respect to shared state: each call
// builds its own clients and sessions so resolutions are safely concurrent.
type ExtractionStrategy interface {
	// Name identifies the strategy in logs and metrics
	Name() string

	// Attempt tries to extract products for the given input
	Attempt(ctx context.Context, input StrategyInput) StrategyResult
}

// NFCeServiceInterface defines the interface for the receipt consultation service
type NFCeServiceInterface interface {
	// Consult resolves a QR code URL into the products printed on the receipt
	Consult(ctx context.Context, qrCodeURL string) ([]models.Product, error)

	// Health returns service health status
	Health() map[string]interface{}
}

// CacheServiceInterface defines the interface for the result cache
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with the configured TTL
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear clears all cached consultations
	Clear(ctx context.Context) error

	// GetStats returns cache statistics
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Health returns cache service health status
	Health() map[string]interface{}
}

// BrowserServiceInterface creates isolated rendering sessions. A session is
// scoped to a single resolution call and never reused.
type BrowserServiceInterface interface {
	// NewSession starts a fresh rendering session
	NewSession(ctx context.Context) (BrowserSession, error)

	// Health returns browser service health status
	Health() map[string]interface{}

	// Close releases service-level resources
	Close() error
}

// BrowserSession is the injected "render a URL and evaluate a script" capability.
// Close must be safe to call on every exit path, including after errors.
type BrowserSession interface {
	// Navigate loads a URL and waits for the document body
	Navigate(ctx context.Context, url string) error

	// WaitSettled waits the configured settle delay for client-side scripts
	WaitSettled(ctx context.Context) error

	// Evaluate runs a script in the page and unmarshals its result into out
	Evaluate(ctx context.Context, script string, out interface{}) error

	// Close tears the session down
	Close() error
}
