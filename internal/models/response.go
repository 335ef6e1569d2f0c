package models

import "time"

// ConsultResponse wraps the extracted product list
// @Description Result of a successful receipt consultation
type ConsultResponse struct {
	// Products in document order
	Products []Product `json:"products"`
	// Number of products extracted
	// @example 3
	Count int `json:"count" example:"3"`
	// Consultation duration in milliseconds
	DurationMs int64 `json:"duration_ms"`
}

// CategoryResponse is the result of a category inference call
type CategoryResponse struct {
	// Inferred category name
	// @example "Bebidas"
	Category string `json:"category" example:"Bebidas"`
}

// ErrorResponse represents an API error
// @Description Standard error envelope
type ErrorResponse struct {
	Error     string    `json:"error" example:"Invalid QR code URL"`
	Message   string    `json:"message" example:"The QR code URL is missing the 'p' parameter"`
	Code      string    `json:"code" example:"MALFORMED_INPUT"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path" example:"/api/v1/nfce/consult"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services,omitempty"`
}
