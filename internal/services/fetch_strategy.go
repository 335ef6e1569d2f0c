package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/despensaapp/nfce-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// DocumentFetchStrategy pulls the canonical XML straight from known portal
// URLs built from the access key. These portals reject requests that do not
// look like a browser, hence the full request signature.
type DocumentFetchStrategy struct {
	timeout   time.Duration
	userAgent string
	client    *http.Client
	logger    *logrus.Logger
	// overridable in tests
	urlsForKey func(key string) []string
}

// NewDocumentFetchStrategy creates a new document fetch strategy
func NewDocumentFetchStrategy(cfg config.NFCeConfig, logger *logrus.Logger) *DocumentFetchStrategy {
	return &DocumentFetchStrategy{
		timeout:    cfg.DocumentTimeout,
		userAgent:  cfg.UserAgent,
		client:     &http.Client{},
		logger:     logger,
		urlsForKey: documentURLs,
	}
}

// documentURLs lists the portal endpoints known to serve the document for a
// 44-digit key, in preference order.
func documentURLs(key string) []string {
	return []string{
		fmt.Sprintf("https://www.nfce.fazenda.gov.br/portal/consulta?p=%s", key),
		fmt.Sprintf("http://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=%s", key),
		fmt.Sprintf("https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=%s", key),
		fmt.Sprintf("https://www.nfce.fazenda.gov.br/portal/consulta?p=%s&tipo=xml", key),
	}
}

// Name identifies the strategy in logs and metrics
func (s *DocumentFetchStrategy) Name() string {
	return "document-fetch"
}

// Attempt fetches each candidate URL until one returns a body that looks like
// a document rather than an HTML error page. Keys that are not exactly 44
// digits yield Empty without any network access.
func (s *DocumentFetchStrategy) Attempt(ctx context.Context, input StrategyInput) StrategyResult {
	if input.Params == nil || !utils.IsAccessKey(input.Params.AccessKey) {
		return Empty()
	}

	for _, candidateURL := range s.urlsForKey(input.Params.AccessKey) {
		body, err := s.fetch(ctx, candidateURL)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"strategy": s.Name(),
				"url":      candidateURL,
				"error":    err.Error(),
			}).Debug("Document fetch failed, trying next URL")
			continue
		}

		trimmed := strings.TrimSpace(body)
		if !strings.HasPrefix(trimmed, "<") {
			continue
		}
		if strings.Contains(trimmed, "<html") || strings.Contains(trimmed, "<!DOCTYPE html") {
			continue
		}

		if products := ParseDocumentXML(trimmed); len(products) > 0 {
			return Success(products)
		}
	}

	return Empty()
}

func (s *DocumentFetchStrategy) fetch(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/xml, text/xml, application/json, */*")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var _ ExtractionStrategy = (*DocumentFetchStrategy)(nil)
