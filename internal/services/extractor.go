package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/despensaapp/nfce-api/internal/category"
	"github.com/despensaapp/nfce-api/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// Field patterns for DANFE-style receipt text. The extraction order matters:
// the unit price label is tried before the total label before the bare R$
// prefix, and name cleanup must scrub exactly the substrings those patterns
// recognize, or leftovers bleed into the product name.
var (
	unitPricePattern  = regexp.MustCompile(`(?i)VI\.\s*Unit\.\s*:?\s*(\d+[.,]\d{2})`)
	totalPricePattern = regexp.MustCompile(`(?i)VI\.\s*Total\s*:?\s*(\d+[.,]\d{2})`)
	currencyPattern   = regexp.MustCompile(`R\$\s*(\d+[.,]\d{2})`)
	decimalPattern    = regexp.MustCompile(`\d+[.,]\d{2}`)
	quantityPattern   = regexp.MustCompile(`(?i)Qtde\.\s*:?\s*(\d+)`)
	unitAmountPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:x|un|unid|kg|g|ml|l)`)
	itemCodePattern   = regexp.MustCompile(`(?i)\(Código:\s*(\d+)\)`)

	scrubUnitPrice  = regexp.MustCompile(`(?i)VI\.\s*Unit\.\s*:?\s*\d+[.,]\d{2}`)
	scrubTotalPrice = regexp.MustCompile(`(?i)VI\.\s*Total\s*:?\s*\d+[.,]\d{2}`)
	scrubCurrency   = regexp.MustCompile(`R\$\s*\d+[.,]\d{2}`)
	scrubQuantity   = regexp.MustCompile(`(?i)Qtde\.\s*:?\s*\d+`)
	scrubUnitPair   = regexp.MustCompile(`(?i)UN\s*:?\s*UN`)
	scrubItemCode   = regexp.MustCompile(`(?i)\(Código:\s*\d+\)`)
	scrubUnitAmount = regexp.MustCompile(`(?i)\d+\s*(?:x|un|unid|kg|g|ml|l)`)
	scrubDigits     = regexp.MustCompile(`\d+`)

	// Block boundaries for pure-text segmentation: a new candidate starts
	// right before any of these markers.
	blockMarkerPattern  = regexp.MustCompile(`(?i)Qtde\.|VI\.\s*Unit\.|VI\.\s*Total|\(Código:`)
	beforeMarkerPattern = regexp.MustCompile(`(?i)Qtde\.|VI\.|\(Código:`)

	// Lines that open with these words are totals, taxes or document headers,
	// not items, unless a price pattern proves otherwise.
	nonItemPrefixPattern = regexp.MustCompile(`(?i)^(total|subtotal|desconto|imposto|cnpj|cpf|nota fiscal|chave|tributo|icms|ipi|descri|produto|valor\s*unit|valor\s*total)`)
	headerPrefixPattern  = regexp.MustCompile(`(?i)^(descri|produto|valor|total|subtotal|imposto|chave|cnpj|cpf)`)
	headerWordPattern    = regexp.MustCompile(`(?i)descri|produto|valor|total|subtotal|imposto|chave|cnpj|cpf`)

	scriptStylePattern = regexp.MustCompile(`(?is)<(?:script|style)[^>]*>.*?</(?:script|style)>`)
	lineBreakTagRegex  = regexp.MustCompile(`(?i)<br\s*/?>|</div>|</tr>|</p>|</li>`)
	cellCloseTagRegex  = regexp.MustCompile(`(?i)</td>`)
	markupTagPattern   = regexp.MustCompile(`<[^>]+>`)
	htmlEntityPattern  = regexp.MustCompile(`(?i)&[a-z]+;|&nbsp;`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

const (
	minBlockLength = 10
	minRowLength   = 20
	minLeafLength  = 30
	maxNameLength  = 200
)

// HTMLExtractor turns receipt markup or plain text into product records using
// layered heuristics: structural selection over the DOM first, pure-text
// segmentation as the net underneath.
type HTMLExtractor struct {
	logger *logrus.Logger
}

// NewHTMLExtractor creates a new HTML extractor
func NewHTMLExtractor(logger *logrus.Logger) *HTMLExtractor {
	return &HTMLExtractor{logger: logger}
}

// ExtractFromHTML extracts products from receipt markup. Deterministic: the
// same input always yields the same list in document order.
func (e *HTMLExtractor) ExtractFromHTML(htmlContent string) []models.Product {
	doc, err := e.parseHTML(htmlContent)
	if err != nil {
		e.logger.WithError(err).Debug("HTML parse failed, using text segmentation")
		return e.ExtractFromText(htmlContent)
	}

	// Synthetic/summary layouts put items in free-flowing text, not tables
	if e.isSynthetic(htmlContent, doc) {
		return e.ExtractFromText(htmlContent)
	}

	rows := e.selectCandidateRows(doc)
	if rows == nil || rows.Length() == 0 {
		return e.ExtractFromText(htmlContent)
	}

	var products []models.Product
	rows.Each(func(i int, row *goquery.Selection) {
		if product, ok := e.productFromRow(row); ok {
			products = append(products, product)
		}
	})

	// Structural selection can match rows that carry no extractable fields;
	// fall through to text segmentation before giving up.
	if len(products) == 0 {
		return e.ExtractFromText(htmlContent)
	}
	return products
}

// selectCandidateRows walks the structural selectors in priority order and
// returns the first non-empty selection.
func (e *HTMLExtractor) selectCandidateRows(doc *goquery.Document) *goquery.Selection {
	rows := doc.Find("table tr")
	if rows.Length() > 0 {
		return rows
	}

	rows = doc.Find(".produto, .item-produto, [class*='produto'], [class*='item'], [id*='produto'], [id*='item'], .linhaProduto, tr[class*='Item']")
	if rows.Length() > 0 {
		return rows
	}

	rows = doc.Find("div[class*='produto'], div[class*='item']")
	if rows.Length() > 0 {
		return rows
	}

	rows = doc.Find("tr").FilterFunction(func(i int, row *goquery.Selection) bool {
		text := row.Text()
		hasPrice := unitPricePattern.MatchString(text) ||
			totalPricePattern.MatchString(text) ||
			currencyPattern.MatchString(text) ||
			decimalPattern.MatchString(text)
		return hasPrice && !headerPrefixPattern.MatchString(text) && len(text) > minRowLength
	})
	if rows.Length() > 0 {
		return rows
	}

	return doc.Find("div, span, p, li, td").FilterFunction(func(i int, el *goquery.Selection) bool {
		text := el.Text()
		hasPrice := unitPricePattern.MatchString(text) ||
			totalPricePattern.MatchString(text) ||
			currencyPattern.MatchString(text) ||
			decimalPattern.MatchString(text)
		return quantityPattern.MatchString(text) &&
			hasPrice &&
			len(text) > minLeafLength &&
			!headerPrefixPattern.MatchString(text)
	})
}

// productFromRow extracts one product from a table row or row-like element
func (e *HTMLExtractor) productFromRow(row *goquery.Selection) (models.Product, bool) {
	cells := row.Find("td, th")
	text := row.Text()

	if cells.Length() < 2 {
		return models.Product{}, false
	}

	// Header and summary rows mention the schema words without carrying prices
	if headerWordPattern.MatchString(text) && !decimalPattern.MatchString(text) && cells.Length() <= 3 {
		return models.Product{}, false
	}

	price, ok := extractPrice(text)
	if !ok {
		return models.Product{}, false
	}

	quantity := 1
	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		quantity = parseIntDefault(m[1], 1)
	} else if m := unitAmountPattern.FindStringSubmatch(text); m != nil {
		quantity = parseIntDefault(m[1], 1)
	}

	code := ""
	if m := itemCodePattern.FindStringSubmatch(text); m != nil {
		code = m[1]
	}

	name := scrubName(text, true)

	// Wide rows often keep the product name in the first cell; prefer it when
	// the whole-row scrub left almost nothing.
	if len(name) < 5 {
		cellText := cells.First().Text()
		if len(cellText) > len(name) {
			if cleaned := scrubName(cellText, false); len(cleaned) > len(name) {
				name = cleaned
			}
		}
	}
	if len(name) < 3 {
		name = nameBeforeFirstMarker(text)
	}

	name = truncate(name, maxNameLength)
	if len(name) <= 2 || price <= 0 {
		return models.Product{}, false
	}

	return models.Product{
		Name:        name,
		Description: codeDescription(code),
		Price:       price,
		Stock:       quantity,
		Category:    string(category.Other),
	}, true
}

// ExtractFromText extracts products from markup-free (or markup-hostile)
// receipt text by splitting it into candidate blocks at field markers.
func (e *HTMLExtractor) ExtractFromText(content string) []models.Product {
	text := e.plainText(content)

	blocks := splitBeforeMatches(text, blockMarkerPattern)
	if len(blocks) < 3 {
		blocks = splitBeforeMatches(text, decimalPattern)
	}

	var products []models.Product
	for _, block := range blocks {
		if product, ok := e.productFromBlock(strings.TrimSpace(block)); ok {
			products = append(products, product)
		}
	}
	return products
}

// productFromBlock extracts one product from a text segment
func (e *HTMLExtractor) productFromBlock(block string) (models.Product, bool) {
	if len(block) < minBlockLength {
		return models.Product{}, false
	}
	if nonItemPrefixPattern.MatchString(block) && !decimalPattern.MatchString(block) {
		return models.Product{}, false
	}

	price, ok := extractPrice(block)
	if !ok {
		return models.Product{}, false
	}

	quantity := 1
	if m := quantityPattern.FindStringSubmatch(block); m != nil {
		quantity = parseIntDefault(m[1], 1)
	}

	code := ""
	if m := itemCodePattern.FindStringSubmatch(block); m != nil {
		code = m[1]
	}

	name := scrubName(block, false)
	if len(name) < 3 {
		name = nameBeforeFirstMarker(block)
	}

	name = truncate(name, maxNameLength)
	if len(name) <= 2 || price <= 0 {
		return models.Product{}, false
	}
	if name == "" {
		name = models.NamePlaceholder
	}

	return models.Product{
		Name:        name,
		Description: codeDescription(code),
		Price:       price,
		Stock:       quantity,
		Category:    string(category.Other),
	}, true
}

// plainText strips scripts, styles and markup, keeping one space between the
// text of adjacent elements.
func (e *HTMLExtractor) plainText(content string) string {
	if doc, err := e.parseHTML(content); err == nil {
		doc.Find("script, style").Remove()
		if body := doc.Find("body"); body.Length() > 0 {
			return strings.TrimSpace(whitespacePattern.ReplaceAllString(body.Text(), " "))
		}
	}

	text := scriptStylePattern.ReplaceAllString(content, " ")
	text = lineBreakTagRegex.ReplaceAllString(text, "\n")
	text = cellCloseTagRegex.ReplaceAllString(text, " ")
	text = markupTagPattern.ReplaceAllString(text, " ")
	text = htmlEntityPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// isSynthetic detects the summary receipt layout served by some portals
func (e *HTMLExtractor) isSynthetic(htmlContent string, doc *goquery.Document) bool {
	if strings.Contains(htmlContent, "Sintetico") || strings.Contains(htmlContent, "sintético") {
		return true
	}
	return doc != nil && strings.Contains(doc.Text(), "Sintetico")
}

// parseHTML parses markup with charset detection, the way portal pages tend to
// arrive in ISO-8859-1.
func (e *HTMLExtractor) parseHTML(htmlContent string) (*goquery.Document, error) {
	reader, err := charset.NewReader(strings.NewReader(htmlContent), "")
	if err != nil {
		return goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	}
	return goquery.NewDocumentFromReader(reader)
}

// extractPrice tries the ordered price patterns and converts the decimal comma
func extractPrice(text string) (float64, bool) {
	for _, pattern := range []*regexp.Regexp{unitPricePattern, totalPricePattern, currencyPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			price, err := parseDecimal(m[1])
			if err != nil {
				return 0, false
			}
			return price, true
		}
	}
	return 0, false
}

// scrubName removes every recognized price/quantity/code substring plus
// residual digits and separators, leaving the product name.
func scrubName(text string, includeUnitAmounts bool) string {
	name := scrubUnitPrice.ReplaceAllString(text, "")
	name = scrubTotalPrice.ReplaceAllString(name, "")
	name = scrubCurrency.ReplaceAllString(name, "")
	name = scrubQuantity.ReplaceAllString(name, "")
	name = scrubUnitPair.ReplaceAllString(name, "")
	name = scrubItemCode.ReplaceAllString(name, "")
	if includeUnitAmounts {
		name = scrubUnitAmount.ReplaceAllString(name, "")
	}
	name = scrubDigits.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "|", "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
}

// nameBeforeFirstMarker falls back to the text preceding the first field
// marker when scrubbing left nothing usable.
func nameBeforeFirstMarker(text string) string {
	before := text
	if loc := beforeMarkerPattern.FindStringIndex(text); loc != nil {
		before = text[:loc[0]]
	}
	before = scrubDigits.ReplaceAllString(before, "")
	before = strings.ReplaceAll(before, "|", "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(before, " "))
}

// splitBeforeMatches splits text into blocks starting at each match of the
// marker pattern, keeping the marker at the head of its block.
func splitBeforeMatches(text string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var blocks []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			blocks = append(blocks, text[prev:loc[0]])
			prev = loc[0]
		}
	}
	blocks = append(blocks, text[prev:])
	return blocks
}

func codeDescription(code string) string {
	if code == "" {
		return ""
	}
	return "Código: " + code
}

func parseIntDefault(raw string, fallback int) int {
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		value = value*10 + int(r-'0')
	}
	if value <= 0 {
		return fallback
	}
	return value
}
