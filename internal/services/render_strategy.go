package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/despensaapp/nfce-api/internal/category"
	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/sirupsen/logrus"
)

// leafExtractionScript visits every rendered element and keeps the ones whose
// text carries both a quantity marker and a price marker, discarding any
// element with a descendant that also matches — otherwise a wrapping container
// and its inner item row would each count as a product.
const leafExtractionScript = `(() => {
  const items = [];
  const qtyRe = /Qtde\.\s*:?\s*\d+/i;
  const priceRe = /VI\.\s*Unit\.|VI\.\s*Total|\d+[.,]\d{2}/i;
  for (const el of document.querySelectorAll('*')) {
    const text = el.textContent || '';
    if (!qtyRe.test(text) || !priceRe.test(text)) continue;
    if (text.length <= 10 || text.length >= 200) continue;
    let nested = false;
    for (const child of el.querySelectorAll('*')) {
      const ct = child.textContent || '';
      if (qtyRe.test(ct) && priceRe.test(ct)) { nested = true; break; }
    }
    if (nested) continue;
    const priceMatch = text.match(/VI\.\s*Unit\.\s*:?\s*(\d+[.,]\d{2})/i)
      || text.match(/VI\.\s*Total\s*:?\s*(\d+[.,]\d{2})/i)
      || text.match(/(\d+[.,]\d{2})/);
    if (!priceMatch) continue;
    const price = parseFloat(priceMatch[1].replace(',', '.'));
    const qtyMatch = text.match(/Qtde\.\s*:?\s*(\d+)/i);
    const quantity = qtyMatch ? parseInt(qtyMatch[1], 10) : 1;
    const codeMatch = text.match(/\(Código:\s*(\d+)\)/i);
    let name = text
      .replace(/VI\.\s*Unit\.\s*:?\s*\d+[.,]\d{2}/gi, '')
      .replace(/VI\.\s*Total\s*:?\s*\d+[.,]\d{2}/gi, '')
      .replace(/Qtde\.\s*:?\s*\d+/gi, '')
      .replace(/UN\s*:?\s*UN/gi, '')
      .replace(/\(Código:\s*\d+\)/gi, '')
      .replace(/\d+[.,]\d{2}/g, '')
      .replace(/\d+/g, '')
      .replace(/\s+/g, ' ')
      .trim();
    if (name.length < 5) {
      name = text.split(/(?:Qtde\.|VI\.|\(Código:)/i)[0]
        .replace(/\d+/g, '')
        .replace(/\s+/g, ' ')
        .trim();
    }
    if (name.length > 2 && price > 0) {
      items.push({
        name: name.substring(0, 200),
        code: codeMatch ? codeMatch[1] : '',
        price: price,
        quantity: quantity,
      });
    }
  }
  return items;
})()`

// tableExtractionScript is the secondary pass over plain table rows, used when
// the leaf selection finds nothing.
const tableExtractionScript = `(() => {
  const items = [];
  for (const row of document.querySelectorAll('table tr, tr')) {
    const text = row.textContent || '';
    if (!/Qtde\.\s*:?\s*\d+/i.test(text) || !/\d+[.,]\d{2}/.test(text)) continue;
    const cells = row.querySelectorAll('td, th');
    if (cells.length < 2) continue;
    const cellText = Array.from(cells).map(c => c.textContent || '').join(' ');
    const priceMatch = cellText.match(/(\d+[.,]\d{2})/);
    if (!priceMatch) continue;
    const price = parseFloat(priceMatch[1].replace(',', '.'));
    const qtyMatch = cellText.match(/Qtde\.\s*:?\s*(\d+)/i);
    const quantity = qtyMatch ? parseInt(qtyMatch[1], 10) : 1;
    const name = cellText
      .replace(/\d+[.,]\d{2}/g, '')
      .replace(/Qtde\.\s*:?\s*\d+/gi, '')
      .replace(/UN\s*:?\s*UN/gi, '')
      .replace(/\(Código:\s*\d+\)/gi, '')
      .replace(/\d+/g, '')
      .trim();
    if (name.length > 2 && price > 0) {
      items.push({ name: name.substring(0, 200), code: '', price: price, quantity: quantity });
    }
  }
  return items;
})()`

// renderedCandidate is the shape both in-page scripts return
type renderedCandidate struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// RenderedPageStrategy drives a headless browser against the QR code URL for
// portals that only populate the document client-side.
type RenderedPageStrategy struct {
	browser BrowserServiceInterface
	timeout time.Duration
	logger  *logrus.Logger
}

// NewRenderedPageStrategy creates a new rendered page strategy
func NewRenderedPageStrategy(browser BrowserServiceInterface, cfg config.BrowserConfig, logger *logrus.Logger) *RenderedPageStrategy {
	return &RenderedPageStrategy{
		browser: browser,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Name identifies the strategy in logs and metrics
func (s *RenderedPageStrategy) Name() string {
	return "rendered-page"
}

// Attempt renders the QR code URL in a fresh session, runs the leaf extraction
// and, if it finds nothing, the table fallback. The session is torn down on
// every exit path.
func (s *RenderedPageStrategy) Attempt(ctx context.Context, input StrategyInput) StrategyResult {
	session, err := s.browser.NewSession(ctx)
	if err != nil {
		return Failed(fmt.Errorf("rendering session unavailable: %w", err))
	}
	defer session.Close()

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := session.Navigate(opCtx, input.QRCodeURL); err != nil {
		return Failed(fmt.Errorf("navigation failed: %w", err))
	}
	if err := session.WaitSettled(opCtx); err != nil {
		return Failed(fmt.Errorf("settle wait failed: %w", err))
	}

	var candidates []renderedCandidate
	if err := session.Evaluate(opCtx, leafExtractionScript, &candidates); err != nil {
		return Failed(fmt.Errorf("page evaluation failed: %w", err))
	}

	if len(candidates) == 0 {
		if err := session.Evaluate(opCtx, tableExtractionScript, &candidates); err != nil {
			return Failed(fmt.Errorf("table evaluation failed: %w", err))
		}
	}

	products := DedupCandidates(candidates)
	if len(products) == 0 {
		return Empty()
	}
	return Success(products)
}

// DedupCandidates collapses candidates that share a price within one cent and
// whose names share a common prefix, keeping the first occurrence. Rendered
// pages often repeat the same item in a summary row with a size suffix.
func DedupCandidates(candidates []renderedCandidate) []models.Product {
	var products []models.Product
	for _, c := range candidates {
		name := strings.TrimSpace(c.Name)
		if len(name) <= 2 || c.Price <= 0 {
			continue
		}

		prefix := strings.ToLower(name)
		if len(prefix) > 10 {
			prefix = prefix[:10]
		}

		duplicate := false
		for _, existing := range products {
			if math.Abs(existing.Price-c.Price) < 0.01 &&
				strings.Contains(strings.ToLower(existing.Name), prefix) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		quantity := c.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		products = append(products, models.Product{
			Name:        truncate(name, maxNameLength),
			Description: codeDescription(c.Code),
			Price:       c.Price,
			Stock:       quantity,
			Category:    string(category.Other),
		})
	}
	return products
}

var _ ExtractionStrategy = (*RenderedPageStrategy)(nil)
