package fiscal

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
)

// IssuerClient puerto de salida hacia el PAC. La implementación concreta es
// REST (internal/infrastructure/facturama); para tests se inyecta un fake.
type IssuerClient interface {
	// CreatePerson registra al emisor y devuelve el id de persona del PAC.
	CreatePerson(ctx context.Context, env string, in facturama.CreatePersonInput) (string, error)
	// CreateAPIKey emite una api key nueva (siempre nueva, sin rotación).
	CreateAPIKey(ctx context.Context, env, personID, description string) (string, error)
	// SubmitIncomeInvoice timbra el CFDI contra el endpoint del ambiente dado.
	SubmitIncomeInvoice(ctx context.Context, env, tenantKey, idempotencyKey string, doc *facturama.CFDIDocument) (*facturama.StampResult, error)
}

// BlobStore puerto del object storage de los archivos del CSD.
type BlobStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// SecretCodec puerto del cifrado de secretos en reposo (pkg/secretbox).
type SecretCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
}

// TxRunner ejecuta el bookkeeping local en transacción y serializa intentos de
// timbrado concurrentes del mismo pago con un advisory lock. La llamada al PAC
// queda fuera de la transacción (frontera distribuida) pero dentro del lock.
type TxRunner interface {
	RunFiscal(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		patientRepo repository.PatientRepository,
		identityRepo repository.FiscalIdentityRepository,
	) error) error
	WithPaymentLock(ctx context.Context, paymentID string, fn func(ctx context.Context) error) error
}
