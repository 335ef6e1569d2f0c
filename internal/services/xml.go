package services

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/despensaapp/nfce-api/internal/category"
	"github.com/despensaapp/nfce-api/internal/models"
	"golang.org/x/net/html/charset"
)

// Canonical NFe document shapes. Depending on the channel the same receipt
// arrives as <nfeProc><NFe><infNFe>, as a bare <NFe>, or as <infNFe> alone,
// so the decode target accepts all three and the collector takes whichever
// item list is populated.
type xmlEnvelope struct {
	XMLName xml.Name
	NFe     *xmlNFe    `xml:"NFe"`
	InfNFe  *xmlInfNFe `xml:"infNFe"`
	Items   []xmlItem  `xml:"det"`
}

type xmlNFe struct {
	InfNFe xmlInfNFe `xml:"infNFe"`
}

type xmlInfNFe struct {
	Items []xmlItem `xml:"det"`
}

type xmlItem struct {
	Prod xmlProd `xml:"prod"`
}

type xmlProd struct {
	Code        string `xml:"cProd"`
	Barcode     string `xml:"cEAN"`
	Name        string `xml:"xProd"`
	Desc        string `xml:"desc"`
	NCM         string `xml:"NCM"`
	Quantity    string `xml:"qCom"`
	TaxQuantity string `xml:"qTrib"`
	UnitValue   string `xml:"vUnCom"`
	TotalValue  string `xml:"vProd"`
}

// ParseDocumentXML extracts products from a canonical NFe document. A document
// that matches none of the recognized shapes yields an empty list, not an
// error; a single malformed item is skipped without aborting the rest.
func ParseDocumentXML(content string) []models.Product {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.CharsetReader = charset.NewReaderLabel

	var envelope xmlEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		return nil
	}

	var items []xmlItem
	switch {
	case envelope.NFe != nil && len(envelope.NFe.InfNFe.Items) > 0:
		items = envelope.NFe.InfNFe.Items
	case envelope.InfNFe != nil && len(envelope.InfNFe.Items) > 0:
		items = envelope.InfNFe.Items
	default:
		items = envelope.Items
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		if product, ok := productFromItem(item.Prod); ok {
			products = append(products, product)
		}
	}
	return products
}

// productFromItem maps one <prod> element to a product record, applying the
// field fallbacks: xProd→desc for the name, vProd→vUnCom for the price,
// qCom→qTrib for the quantity and cProd→cEAN for the fiscal code.
func productFromItem(prod xmlProd) (models.Product, bool) {
	name := strings.TrimSpace(prod.Name)
	if name == "" {
		name = strings.TrimSpace(prod.Desc)
	}
	if name == "" {
		return models.Product{}, false
	}

	rawPrice := prod.TotalValue
	if strings.TrimSpace(rawPrice) == "" {
		rawPrice = prod.UnitValue
	}
	price, err := parseDecimal(rawPrice)
	if err != nil || price <= 0 {
		return models.Product{}, false
	}

	rawQuantity := prod.Quantity
	if strings.TrimSpace(rawQuantity) == "" {
		rawQuantity = prod.TaxQuantity
	}
	quantity := 1
	if parsed, err := parseDecimal(rawQuantity); err == nil {
		if rounded := int(math.Round(parsed)); rounded > 0 {
			quantity = rounded
		}
	}

	code := strings.TrimSpace(prod.Code)
	if code == "" {
		code = strings.TrimSpace(prod.Barcode)
	}

	description := truncate(name, 500)
	if code != "" {
		description = "Código: " + code
	}

	return models.Product{
		Name:        truncate(name, 200),
		Description: description,
		Price:       price,
		Stock:       quantity,
		Category:    string(category.Other),
		NCM:         strings.TrimSpace(prod.NCM),
	}, true
}

// parseDecimal accepts both 12.50 and 12,50
func parseDecimal(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return strconv.ParseFloat(normalized, 64)
}

// truncate caps a string at max runes without splitting a multi-byte character
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
