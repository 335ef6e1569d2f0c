package models

// ConsultRequest is the body of a receipt consultation request
// @Description QR code URL scanned from an NFC-e
type ConsultRequest struct {
	// URL encoded in the receipt QR code
	// @example "https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=29240112345678000199650010000012341234567890|2|1|1|ABCD"
	QRCodeURL string `json:"qr_code_url" binding:"required" example:"https://nfe.sefaz.ba.gov.br/servicos/nfce/qrcode.aspx?p=..."`
}
