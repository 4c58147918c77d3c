package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// Asegura que InvoiceRepo implementa repository.InvoiceRepository.
var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
type InvoiceRepo struct {
	db DBTX
}

// NewInvoiceRepository construye el adaptador de persistencia de facturas.
func NewInvoiceRepository(db DBTX) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// GetByPaymentID obtiene la factura de un pago (nil si no existe).
func (r *InvoiceRepo) GetByPaymentID(ctx context.Context, paymentID string) (*entity.Invoice, error) {
	const query = `
		SELECT id, payment_id, clinic_id, uuid, status, pdf_url, xml_url, error_msg, created_at, updated_at
		FROM invoices WHERE payment_id = $1`
	var inv entity.Invoice
	err := r.db.QueryRow(ctx, query, paymentID).Scan(
		&inv.ID, &inv.PaymentID, &inv.ClinicID, &inv.UUID, &inv.Status,
		&inv.PDFURL, &inv.XMLURL, &inv.ErrorMsg, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// UpsertByPaymentID inserta o actualiza con conflicto en payment_id: la
// unicidad por pago la garantiza el constraint, no una identidad aparte. Un
// reintento exitoso sobreescribe los campos de error de un intento fallido.
func (r *InvoiceRepo) UpsertByPaymentID(ctx context.Context, inv *entity.Invoice) error {
	const query = `
		INSERT INTO invoices
			(id, payment_id, clinic_id, uuid, status, pdf_url, xml_url, error_msg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (payment_id) DO UPDATE SET
			uuid       = EXCLUDED.uuid,
			status     = EXCLUDED.status,
			pdf_url    = EXCLUDED.pdf_url,
			xml_url    = EXCLUDED.xml_url,
			error_msg  = EXCLUDED.error_msg,
			updated_at = EXCLUDED.updated_at`
	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.PaymentID, inv.ClinicID, inv.UUID, inv.Status,
		inv.PDFURL, inv.XMLURL, inv.ErrorMsg, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert invoice: %w", err)
	}
	return nil
}
