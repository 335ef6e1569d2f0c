package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/despensaapp/nfce-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// MarkupHeuristicStrategy is the last resort: it fetches the QR code URL as a
// plain page and mines the returned markup for item rows. Unlike the earlier
// strategies, a transport failure here is surfaced to the orchestrator,
// because there is nothing left to fall back to.
type MarkupHeuristicStrategy struct {
	timeout   time.Duration
	userAgent string
	client    *http.Client
	extractor *HTMLExtractor
	logger    *logrus.Logger
}

// NewMarkupHeuristicStrategy creates a new markup heuristic strategy
func NewMarkupHeuristicStrategy(cfg config.NFCeConfig, logger *logrus.Logger) *MarkupHeuristicStrategy {
	return &MarkupHeuristicStrategy{
		timeout:   cfg.MarkupTimeout,
		userAgent: cfg.UserAgent,
		client:    &http.Client{},
		extractor: NewHTMLExtractor(logger),
		logger:    logger,
	}
}

// Name identifies the strategy in logs and metrics
func (s *MarkupHeuristicStrategy) Name() string {
	return "markup-heuristic"
}

// Attempt fetches the normalized QR code URL and runs the markup extractor
// over it. Bahia portal URLs additionally get the DANFE viewer endpoints,
// which render the same document with item rows in static markup.
func (s *MarkupHeuristicStrategy) Attempt(ctx context.Context, input StrategyInput) StrategyResult {
	pageURL := utils.NormalizeQRCodeURL(input.QRCodeURL)

	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return Failed(fmt.Errorf("page fetch failed: %w", err))
	}

	if strings.Contains(pageURL, "sefaz.ba.gov.br") && input.Params != nil {
		if products := s.tryDanfeURLs(ctx, input.Params.RawParams); len(products) > 0 {
			return Success(products)
		}
	}

	products := s.extractor.ExtractFromHTML(body)
	if len(products) == 0 {
		return Empty()
	}
	return Success(products)
}

// tryDanfeURLs probes the Bahia DANFE endpoints with the raw QR code payload.
// Failures here are non-fatal since the main page has already been fetched.
func (s *MarkupHeuristicStrategy) tryDanfeURLs(ctx context.Context, rawParams string) []models.Product {
	escaped := url.QueryEscape(rawParams)
	candidates := []string{
		fmt.Sprintf("http://nfe.sefaz.ba.gov.br/servicos/nfce/Modulos/Geral/NFCEC_consulta_danfe.aspx?p=%s", escaped),
		fmt.Sprintf("https://nfe.sefaz.ba.gov.br/servicos/nfce/Modulos/Geral/NFCEC_consulta_danfe.aspx?p=%s", escaped),
		fmt.Sprintf("https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=%s", escaped),
	}

	for _, candidateURL := range candidates {
		body, err := s.fetch(ctx, candidateURL)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"strategy": s.Name(),
				"url":      candidateURL,
				"error":    err.Error(),
			}).Debug("DANFE fetch failed, trying next URL")
			continue
		}
		if products := s.extractor.ExtractFromHTML(body); len(products) > 0 {
			return products
		}
	}
	return nil
}

func (s *MarkupHeuristicStrategy) fetch(ctx context.Context, pageURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var _ ExtractionStrategy = (*MarkupHeuristicStrategy)(nil)
