package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL y administra
// los advisory locks por pago que serializan intentos de timbrado concurrentes.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunFiscal inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Solo cubre el bookkeeping local: la llamada al PAC queda
// fuera (frontera de transacción distribuida).
func (r *TxRunner) RunFiscal(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	patientRepo repository.PatientRepository,
	identityRepo repository.FiscalIdentityRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInvoiceRepository(tx), NewPatientRepository(tx), NewFiscalIdentityRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithPaymentLock toma un advisory lock de sesión derivado del id del pago,
// ejecuta fn y libera el lock. Serializa los intentos de timbrado del mismo
// pago durante toda la ventana del intento (lecturas locales + llamada al PAC
// + escritura), que es más de lo que puede cubrir una transacción local.
func (r *TxRunner) WithPaymentLock(ctx context.Context, paymentID string, fn func(ctx context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, paymentID); err != nil {
		return fmt.Errorf("advisory lock pago %s: %w", paymentID, err)
	}
	defer func() {
		// Unlock con context propio: el del caller puede venir ya cancelado.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, paymentID)
	}()

	return fn(ctx)
}
