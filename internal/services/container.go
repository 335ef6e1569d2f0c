package services

import (
	"context"
	"fmt"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all service dependencies
type Container struct {
	config         *config.Config
	logger         *logrus.Logger
	redisClient    *redis.Client
	NFCeService    NFCeServiceInterface
	CacheService   CacheServiceInterface
	BrowserService BrowserServiceInterface
	Metrics        *Metrics
	Registry       *prometheus.Registry
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initRedis(); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis initializes Redis client
func (c *Container) initRedis() error {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running without cache")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}

	return nil
}

// initServices initializes all services and wires the strategy chain
func (c *Container) initServices() error {
	c.Registry = prometheus.NewRegistry()
	c.Metrics = NewMetrics(c.Registry)

	c.CacheService = NewCacheService(c.redisClient, c.config.NFCe.CacheTTL, c.logger)
	c.BrowserService = NewBrowserService(c.config.Browser, c.logger)

	strategies := []ExtractionStrategy{
		NewProtocolQueryStrategy(c.config.NFCe, c.logger),
		NewDocumentFetchStrategy(c.config.NFCe, c.logger),
		NewRenderedPageStrategy(c.BrowserService, c.config.Browser, c.logger),
		NewMarkupHeuristicStrategy(c.config.NFCe, c.logger),
	}

	c.NFCeService = NewNFCeService(strategies, c.CacheService, c.Metrics, c.logger)

	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errs []error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.BrowserService != nil {
		if err := c.BrowserService.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser service: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.redisClient != nil {
		ctx := context.Background()
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.BrowserService != nil {
		health["browser"] = c.BrowserService.Health()
	}

	if c.NFCeService != nil {
		health["nfce"] = c.NFCeService.Health()
	}

	return health
}

// GetRedisClient returns the Redis client
func (c *Container) GetRedisClient() *redis.Client {
	return c.redisClient
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
