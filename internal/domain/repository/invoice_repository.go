package repository

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia de facturas (una fila por pago).
type InvoiceRepository interface {
	// GetByPaymentID devuelve la factura del pago o nil si no existe.
	GetByPaymentID(ctx context.Context, paymentID string) (*entity.Invoice, error)
	// UpsertByPaymentID inserta o actualiza la factura con conflicto en
	// payment_id. Un intento posterior exitoso sobreescribe una fila de error.
	UpsertByPaymentID(ctx context.Context, invoice *entity.Invoice) error
}
