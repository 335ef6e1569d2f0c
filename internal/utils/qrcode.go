package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/despensaapp/nfce-api/internal/models"
)

// AccessKeyLength is the fixed length of an NFC-e access key
const AccessKeyLength = 44

var (
	digitsOnlyRegex = regexp.MustCompile(`^\d+$`)
	schemeRegex     = regexp.MustCompile(`(?i)^https?://`)
)

// ParseQRCodeURL decodes the pipe-delimited payload carried in the "p" query
// parameter of an NFC-e QR code URL. It performs no network access.
func ParseQRCodeURL(qrCodeURL string) (*models.AccessKeyParams, error) {
	parsed, err := url.Parse(NormalizeQRCodeURL(qrCodeURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	payload := parsed.Query().Get("p")
	if payload == "" {
		return nil, fmt.Errorf("%w: parameter 'p' not found in QR code URL", models.ErrMalformedInput)
	}

	parts := strings.Split(payload, "|")
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 pipe-delimited segments, found %d", models.ErrMalformedInput, len(parts))
	}

	return &models.AccessKeyParams{
		AccessKey:   parts[0],
		Version:     parts[1],
		Environment: parts[2],
		RawParams:   payload,
	}, nil
}

// NormalizeQRCodeURL prefixes https:// when the scanned payload has no scheme
func NormalizeQRCodeURL(qrCodeURL string) string {
	trimmed := strings.TrimSpace(qrCodeURL)
	if !schemeRegex.MatchString(trimmed) {
		return "https://" + trimmed
	}
	return trimmed
}

// IsAccessKey reports whether key is a syntactically valid 44-digit access key.
// Strategies that query authoritative sources by key require this; shorter keys
// restrict the resolution to the browser and markup strategies.
func IsAccessKey(key string) bool {
	return len(key) == AccessKeyLength && digitsOnlyRegex.MatchString(key)
}

// IsFiscalURL reports whether the URL plausibly points at a fiscal document
// portal. Used as a cheap guard before starting a consultation.
func IsFiscalURL(qrCodeURL string) bool {
	lowered := strings.ToLower(qrCodeURL)
	return strings.Contains(lowered, "sefaz") ||
		strings.Contains(lowered, "nfce") ||
		strings.Contains(lowered, "nfe")
}
