package entity

import "time"

// Estados de la factura. El estado real es texto libre del PAC; "TIMBRADA" es
// el valor terminal por defecto cuando el PAC no devuelve uno.
const (
	InvoiceStatusStamped = "TIMBRADA"
	InvoiceStatusError   = "ERROR"
)

// Invoice es el resultado local del timbrado: a lo sumo una fila por pago
// (upsert con conflicto en payment_id). En éxito guarda el UUID fiscal y las
// URLs de los documentos; en fallo guarda el mensaje de error del PAC y puede
// ser sobreescrita por un intento posterior exitoso.
type Invoice struct {
	ID        string
	PaymentID string
	ClinicID  string
	UUID      string // folio fiscal asignado por el PAC
	Status    string
	PDFURL    string
	XMLURL    string
	ErrorMsg  string // solo en la ruta de fallo
	CreatedAt time.Time
	UpdatedAt time.Time
}
