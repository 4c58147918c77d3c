package fiscal_test

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/pkg/secretbox"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos del caso de uso.
// ──────────────────────────────────────────────────────────────────────────────

func testCodec() *secretbox.Codec {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = 0x5a
	}
	codec, err := secretbox.New("1", map[string]string{"1": base64.StdEncoding.EncodeToString(raw)})
	if err != nil {
		panic(err)
	}
	return codec
}

type fakeClinicRepo struct {
	clinics map[string]*entity.Clinic
}

func (f *fakeClinicRepo) GetByID(_ context.Context, id string) (*entity.Clinic, error) {
	return f.clinics[id], nil
}

type fakeIdentityRepo struct {
	identities map[string]*entity.FiscalIdentity // clinic_id -> fila
	upserts    int
}

func (f *fakeIdentityRepo) GetByClinicID(_ context.Context, clinicID string) (*entity.FiscalIdentity, error) {
	return f.identities[clinicID], nil
}

func (f *fakeIdentityRepo) Upsert(_ context.Context, identity *entity.FiscalIdentity) error {
	if f.identities == nil {
		f.identities = make(map[string]*entity.FiscalIdentity)
	}
	cp := *identity
	f.identities[identity.ClinicID] = &cp
	f.upserts++
	return nil
}

type fakeInvoiceRepo struct {
	rows      map[string]*entity.Invoice // payment_id -> fila (emula el constraint único)
	upsertErr error
}

func (f *fakeInvoiceRepo) GetByPaymentID(_ context.Context, paymentID string) (*entity.Invoice, error) {
	return f.rows[paymentID], nil
}

func (f *fakeInvoiceRepo) UpsertByPaymentID(_ context.Context, inv *entity.Invoice) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.rows == nil {
		f.rows = make(map[string]*entity.Invoice)
	}
	// Como en SQL: el conflicto conserva el id original de la fila.
	if existing, ok := f.rows[inv.PaymentID]; ok {
		inv.ID = existing.ID
	}
	cp := *inv
	f.rows[inv.PaymentID] = &cp
	return nil
}

type fakePaymentRepo struct {
	contexts map[string]*repository.IssuanceContext
	reads    int
}

func (f *fakePaymentRepo) GetIssuanceContext(_ context.Context, paymentID string) (*repository.IssuanceContext, error) {
	f.reads++
	ic, ok := f.contexts[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *ic
	return &cp, nil
}

type fakePatientRepo struct {
	patients map[string]*entity.Patient
	updates  []entity.TaxProfile
}

func (f *fakePatientRepo) GetByID(_ context.Context, id string) (*entity.Patient, error) {
	return f.patients[id], nil
}

func (f *fakePatientRepo) UpdateTaxProfile(_ context.Context, patientID string, profile entity.TaxProfile) error {
	f.updates = append(f.updates, profile)
	if p, ok := f.patients[patientID]; ok {
		p.Tax = profile
	}
	return nil
}

// fakeTxRunner ejecuta los callbacks en línea, sin transacción real, y cuenta
// las adquisiciones del lock por pago.
type fakeTxRunner struct {
	invoiceRepo  *fakeInvoiceRepo
	patientRepo  *fakePatientRepo
	identityRepo *fakeIdentityRepo
	runErr       error
	locks        []string
}

func (f *fakeTxRunner) RunFiscal(ctx context.Context, fn func(
	repository.InvoiceRepository,
	repository.PatientRepository,
	repository.FiscalIdentityRepository,
) error) error {
	if f.runErr != nil {
		return f.runErr
	}
	return fn(f.invoiceRepo, f.patientRepo, f.identityRepo)
}

func (f *fakeTxRunner) WithPaymentLock(ctx context.Context, paymentID string, fn func(context.Context) error) error {
	f.locks = append(f.locks, paymentID)
	return fn(ctx)
}

// fakeIssuer registra cada llamada al PAC y permite inyectar respuestas.
type fakeIssuer struct {
	personID    string
	personCalls []facturama.CreatePersonInput
	keyCalls    int
	stampCalls  []stampCall
	stampResult *facturama.StampResult
	stampErr    error
}

type stampCall struct {
	env            string
	tenantKey      string
	idempotencyKey string
	doc            *facturama.CFDIDocument
}

func (f *fakeIssuer) CreatePerson(_ context.Context, env string, in facturama.CreatePersonInput) (string, error) {
	f.personCalls = append(f.personCalls, in)
	if f.personID == "" {
		f.personID = "persona-1"
	}
	return f.personID, nil
}

func (f *fakeIssuer) CreateAPIKey(_ context.Context, env, personID, description string) (string, error) {
	f.keyCalls++
	return fmt.Sprintf("apikey-%d", f.keyCalls), nil
}

func (f *fakeIssuer) SubmitIncomeInvoice(_ context.Context, env, tenantKey, idempotencyKey string, doc *facturama.CFDIDocument) (*facturama.StampResult, error) {
	f.stampCalls = append(f.stampCalls, stampCall{env: env, tenantKey: tenantKey, idempotencyKey: idempotencyKey, doc: doc})
	if f.stampErr != nil {
		return nil, f.stampErr
	}
	if f.stampResult != nil {
		cp := *f.stampResult
		return &cp, nil
	}
	return &facturama.StampResult{
		UUID:   "11111111-2222-3333-4444-555555555555",
		Status: entity.InvoiceStatusStamped,
		PDFURL: "https://pac.example/doc.pdf",
		XMLURL: "https://pac.example/doc.xml",
	}, nil
}

type fakeBlobStore struct {
	blobs     map[string][]byte
	downloads int
}

func (f *fakeBlobStore) Download(_ context.Context, path string) ([]byte, error) {
	f.downloads++
	data, ok := f.blobs[path]
	if !ok {
		return nil, &domain.StorageError{Path: path, Err: fmt.Errorf("no existe")}
	}
	return data, nil
}

func (f *fakeBlobStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.blobs[path]
	return ok, nil
}
