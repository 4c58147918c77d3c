package dto

// IssueInvoiceRequest body para POST /api/fiscal/invoices. Trae el perfil
// fiscal del receptor tal como lo capturó la recepción de la clínica; si
// difiere del almacenado se sincroniza antes de timbrar.
type IssueInvoiceRequest struct {
	PaymentID      string `json:"payment_id"`
	CFDIUse        string `json:"cfdi_use"`
	RecipientTaxID string `json:"recipient_tax_id"`
	FiscalAddress  string `json:"fiscal_address"`
	FiscalRegime   string `json:"fiscal_regime"`
}

// InvoiceResponse resultado del timbrado.
type InvoiceResponse struct {
	UUID   string `json:"uuid"`
	PDFURL string `json:"pdf_url"`
	XMLURL string `json:"xml_url"`
}

// SaveCredentialsRequest body para POST /api/fiscal/credentials. Las rutas
// apuntan a blobs del CSD ya cargados en object storage por la app principal.
type SaveCredentialsRequest struct {
	ClinicID           string `json:"clinic_id"`
	CertificatePath    string `json:"certificate_path"`
	PrivateKeyPath     string `json:"private_key_path"`
	PrivateKeyPassword string `json:"private_key_password"`
	Environment        string `json:"environment"` // sandbox | production
}

// TestInvoiceRequest body para POST /api/fiscal/invoices/test.
type TestInvoiceRequest struct {
	ClinicID string `json:"clinic_id"`
}
