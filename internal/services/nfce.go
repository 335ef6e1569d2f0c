package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/despensaapp/nfce-api/internal/category"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/despensaapp/nfce-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// NFCeService resolves QR code URLs into product records by walking the
// acquisition strategies in fixed order and stopping at the first one that
// yields products.
type NFCeService struct {
	strategies []ExtractionStrategy
	cache      CacheServiceInterface
	metrics    *Metrics
	logger     *logrus.Logger
}

// NewNFCeService creates a new consultation service with the given strategy
// chain. Order matters: cheaper and more structured sources come first.
func NewNFCeService(strategies []ExtractionStrategy, cache CacheServiceInterface, metrics *Metrics, logger *logrus.Logger) NFCeServiceInterface {
	return &NFCeService{
		strategies: strategies,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Consult resolves a QR code URL into the products printed on the receipt.
// Malformed input fails fast; acquisition failures degrade to the next
// strategy, and only the final strategy's transport error survives to the
// caller. An exhausted chain yields ErrNotFound.
func (s *NFCeService) Consult(ctx context.Context, qrCodeURL string) ([]models.Product, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ConsultDuration.Observe(time.Since(start).Seconds())
		}
	}()

	params, err := utils.ParseQRCodeURL(qrCodeURL)
	if err != nil {
		s.countConsultation(outcomeFailed)
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"access_key": params.AccessKey,
	})

	if cached, ok := s.fromCache(ctx, params.AccessKey); ok {
		log.WithField("products", len(cached)).Info("Consultation served from cache")
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.countConsultation(outcomeSuccess)
		return cached, nil
	}

	input := StrategyInput{QRCodeURL: qrCodeURL, Params: params}

	var lastErr error
	for i, strategy := range s.strategies {
		result := strategy.Attempt(ctx, input)
		s.countAttempt(strategy.Name(), result.Outcome)

		switch result.Outcome {
		case OutcomeSuccess:
			products := s.applyCategories(result.Products)
			log.WithFields(logrus.Fields{
				"strategy": strategy.Name(),
				"products": len(products),
			}).Info("Consultation resolved")
			s.toCache(ctx, params.AccessKey, products)
			s.countConsultation(outcomeSuccess)
			return products, nil

		case OutcomeFailed:
			log.WithFields(logrus.Fields{
				"strategy": strategy.Name(),
				"error":    result.Err.Error(),
			}).Warn("Strategy failed, falling through")
			if i == len(s.strategies)-1 {
				lastErr = result.Err
			}

		default:
			log.WithField("strategy", strategy.Name()).Debug("Strategy found nothing")
		}
	}

	if lastErr != nil {
		s.countConsultation(outcomeFailed)
		return nil, lastErr
	}

	s.countConsultation(outcomeNotFound)
	return nil, fmt.Errorf("%w: no strategy produced products for key %s", models.ErrNotFound, params.AccessKey)
}

// applyCategories classifies each product, preferring the fiscal NCM code and
// falling back to the name keywords.
func (s *NFCeService) applyCategories(products []models.Product) []models.Product {
	for i := range products {
		if products[i].NCM != "" {
			if cat, ok := category.FromNCM(products[i].NCM); ok {
				products[i].Category = string(cat)
				continue
			}
		}
		products[i].Category = string(category.FromName(products[i].Name))
	}
	return products
}

func (s *NFCeService) fromCache(ctx context.Context, accessKey string) ([]models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, CacheKey(accessKey))
	if err != nil || raw == "" {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Discarding unreadable cache entry")
		return nil, false
	}
	return products, true
}

func (s *NFCeService) toCache(ctx context.Context, accessKey string, products []models.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKey(accessKey), string(raw)); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Failed to cache consultation result")
	}
}

func (s *NFCeService) countConsultation(outcome string) {
	if s.metrics != nil {
		s.metrics.Consultations.WithLabelValues(outcome).Inc()
	}
}

func (s *NFCeService) countAttempt(strategy string, outcome StrategyOutcome) {
	if s.metrics != nil {
		s.metrics.StrategyAttempts.WithLabelValues(strategy, outcomeLabel(outcome)).Inc()
	}
}

// Health returns service health status
func (s *NFCeService) Health() map[string]interface{} {
	names := make([]string, 0, len(s.strategies))
	for _, strategy := range s.strategies {
		names = append(names, strategy.Name())
	}
	return map[string]interface{}{
		"status":     "healthy",
		"strategies": names,
	}
}

var _ NFCeServiceInterface = (*NFCeService)(nil)
