package models

import "errors"

// Sentinel errors distinguishing the two caller-visible failure modes of a
// consultation. Everything else (endpoint timeouts, unparseable documents,
// unavailable browser) degrades silently to the next acquisition strategy.
var (
	// ErrMalformedInput marks a QR code URL whose payload cannot be decoded.
	// No fallback is attempted for it.
	ErrMalformedInput = errors.New("malformed QR code input")

	// ErrNotFound means every acquisition strategy was exhausted without
	// producing a single product. It is an outcome, not a server fault.
	ErrNotFound = errors.New("no products found")
)
