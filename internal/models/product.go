package models

import "time"

// NamePlaceholder is used when a product name cannot be recovered from the source document
const NamePlaceholder = "Produto sem nome"

// Product represents a single item extracted from an NFC-e
// @Description Itemized product record extracted from a fiscal receipt
type Product struct {
	// Product name as printed on the receipt, trimmed and capped at 200 characters
	// @example "Arroz Tipo 1 5kg"
	Name string `json:"name" example:"Arroz Tipo 1 5kg"`
	// Optional description, usually the fiscal item code
	// @example "Código: 7891234567890"
	Description string `json:"description,omitempty" example:"Código: 7891234567890"`
	// Unit or total price, always positive
	// @example 12.5
	Price float64 `json:"price" example:"12.5"`
	// Quantity bought, defaults to 1 when the receipt does not state it
	// @example 2
	Stock int `json:"stock" example:"2"`
	// Always nil at extraction time, filled in later by the inventory layer
	ExpirationDate *time.Time `json:"expiration_date"`
	// Inferred category name (Limpeza, Higiene, Bebidas, Alimentos or Outros)
	// @example "Alimentos"
	Category string `json:"category" example:"Alimentos"`
	// NCM fiscal classification code when the source document carries one
	NCM string `json:"ncm,omitempty"`
}

// AccessKeyParams holds the parameters decoded from an NFC-e QR code URL
type AccessKeyParams struct {
	// 44-digit access key identifying the fiscal document
	AccessKey string `json:"access_key"`
	// QR code layout version
	Version string `json:"version"`
	// Emission environment (1 = production, 2 = homologation)
	Environment string `json:"environment"`
	// Full pipe-delimited payload, kept verbatim for fallback URL construction
	RawParams string `json:"-"`
}
