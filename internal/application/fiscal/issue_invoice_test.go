package fiscal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsalud/fiscal-api/internal/application/fiscal"
	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/pkg/logger"
)

type issueFixture struct {
	uc       *fiscal.IssueInvoiceUseCase
	payments *fakePaymentRepo
	invoices *fakeInvoiceRepo
	patients *fakePatientRepo
	tx       *fakeTxRunner
	issuer   *fakeIssuer
	blobs    *fakeBlobStore
	codec    fiscal.SecretCodec
}

// newIssueFixture arma un contexto de facturación completo y listo para timbrar.
func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()
	codec := testCodec()
	passwordEnc, err := codec.Encrypt("clave-csd")
	require.NoError(t, err)
	apiKeyEnc, err := codec.Encrypt("apikey-tenant")
	require.NoError(t, err)

	personID := "persona-1"
	ic := &repository.IssuanceContext{
		Payment: entity.Payment{
			ID:        "pago-77",
			ClinicID:  "cli-1",
			PatientID: "pac-1",
			ServiceID: "srv-1",
			Amount:    decimal.RequireFromString("150.50"),
			Method:    "card",
		},
		Patient: entity.Patient{
			ID:       "pac-1",
			ClinicID: "cli-1",
			Name:     "Juana Pérez",
			Tax: entity.TaxProfile{
				RFC:              "PEPJ800101AAA",
				FiscalAddress:    "Av. Reforma 10, Col. Juárez",
				FiscalPostalCode: "06600",
				TaxRegime:        "612",
				CFDIUse:          "D01",
			},
		},
		Service: entity.MedicalService{
			ID:       "srv-1",
			ClinicID: "cli-1",
			Name:     "Consulta general",
		},
		Clinic: entity.Clinic{
			ID:         "cli-1",
			Name:       "Clínica del Valle",
			Address:    "Calle Falsa 123, Col. Centro, CDMX",
			PostalCode: "06000",
		},
		Identity: &entity.FiscalIdentity{
			ID:             "fi-1",
			ClinicID:       "cli-1",
			RFC:            "CVA120508AB1",
			LegalName:      "Clínica del Valle SA de CV",
			TaxRegime:      "601",
			CertPath:       "csd/cli-1/cert.cer",
			KeyPath:        "csd/cli-1/llave.key",
			KeyPasswordEnc: passwordEnc,
			PersonID:       &personID,
			APIKeyEnc:      apiKeyEnc,
			Environment:    entity.EnvironmentProduction,
		},
	}

	payments := &fakePaymentRepo{contexts: map[string]*repository.IssuanceContext{"pago-77": ic}}
	invoices := &fakeInvoiceRepo{rows: map[string]*entity.Invoice{}}
	patients := &fakePatientRepo{patients: map[string]*entity.Patient{"pac-1": &ic.Patient}}
	identities := &fakeIdentityRepo{}
	tx := &fakeTxRunner{invoiceRepo: invoices, patientRepo: patients, identityRepo: identities}
	issuer := &fakeIssuer{}
	blobs := &fakeBlobStore{blobs: map[string][]byte{
		"csd/cli-1/cert.cer":  []byte("contenido cer"),
		"csd/cli-1/llave.key": []byte("contenido key"),
	}}
	uc := fiscal.NewIssueInvoiceUseCase(payments, invoices, patients, tx, issuer, blobs, codec, logger.Nop())
	return &issueFixture{uc: uc, payments: payments, invoices: invoices, patients: patients, tx: tx, issuer: issuer, blobs: blobs, codec: codec}
}

func (f *issueFixture) context(paymentID string) *repository.IssuanceContext {
	return f.payments.contexts[paymentID]
}

func TestIssueInvoice_Exitosa(t *testing.T) {
	f := newIssueFixture(t)

	inv, err := f.uc.IssueInvoice(context.Background(), "pago-77")
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", inv.UUID)
	assert.Equal(t, entity.InvoiceStatusStamped, inv.Status)
	assert.Equal(t, "https://pac.example/doc.pdf", inv.PDFURL)

	// El timbrado corre bajo el lock del pago, contra el ambiente de la
	// identidad y con llave de idempotencia determinista.
	assert.Equal(t, []string{"pago-77"}, f.tx.locks)
	require.Len(t, f.issuer.stampCalls, 1)
	call := f.issuer.stampCalls[0]
	assert.Equal(t, entity.EnvironmentProduction, call.env)
	assert.Equal(t, "apikey-tenant", call.tenantKey)
	assert.Equal(t, "pago-pago-77", call.idempotencyKey)

	// Documento: versión fija, exención y monto a seis decimales.
	assert.Equal(t, "4.0", call.doc.Version)
	assert.Equal(t, "04", call.doc.FormaPago) // card
	assert.Equal(t, "PUE", call.doc.MetodoPago)
	assert.Equal(t, "06000", call.doc.LugarExpedicion)
	assert.Equal(t, "06600", call.doc.Receptor.DomicilioFiscal)
	assert.Equal(t, "clave-csd", call.doc.Emisor.PasswordLlave)
	require.Len(t, call.doc.Conceptos, 1)
	concepto := call.doc.Conceptos[0]
	assert.Equal(t, "1", concepto.Cantidad)
	assert.Equal(t, "150.500000", concepto.ValorUnitario)
	assert.Equal(t, "85121600", concepto.ClaveProdServ) // clave genérica por defecto
	assert.Equal(t, "E48", concepto.ClaveUnidad)
	assert.Equal(t, "01", concepto.ObjetoImp)

	// Exactamente una fila local por pago.
	require.Len(t, f.invoices.rows, 1)
	assert.Equal(t, inv.UUID, f.invoices.rows["pago-77"].UUID)
}

func TestIssueInvoice_PagoInexistente(t *testing.T) {
	f := newIssueFixture(t)

	_, err := f.uc.IssueInvoice(context.Background(), "pago-nope")

	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Empty(t, f.issuer.stampCalls)
}

func TestIssueInvoice_SinIdentidadFiscal(t *testing.T) {
	f := newIssueFixture(t)
	f.context("pago-77").Identity = nil

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.issuer.stampCalls)
}

func TestIssueInvoice_IdentidadIncompleta(t *testing.T) {
	f := newIssueFixture(t)
	f.context("pago-77").Identity.KeyPasswordEnc = ""

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "contraseña de la llave", verr.Field)
	// Falla antes de tocar storage o PAC.
	assert.Zero(t, f.blobs.downloads)
	assert.Empty(t, f.issuer.stampCalls)
}

func TestIssueInvoice_CPDelEmisorExtraidoDeLaDireccion(t *testing.T) {
	f := newIssueFixture(t)
	ic := f.context("pago-77")
	ic.Clinic.PostalCode = ""
	ic.Clinic.Address = "Calle Falsa 123, Col. Centro, CDMX, 06000"

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")
	require.NoError(t, err)
	assert.Equal(t, "06000", f.issuer.stampCalls[0].doc.LugarExpedicion)
}

func TestIssueInvoice_SinCodigoPostalDelReceptor(t *testing.T) {
	f := newIssueFixture(t)
	ic := f.context("pago-77")
	ic.Patient.Tax.FiscalPostalCode = ""
	ic.Patient.Tax.FiscalAddress = "Domicilio conocido s/n"

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "código postal del receptor", verr.Field)
	assert.Empty(t, f.issuer.stampCalls)
}

func TestIssueInvoice_RechazoDelPACRegistraError(t *testing.T) {
	f := newIssueFixture(t)
	f.issuer.stampErr = &domain.IssuerError{StatusCode: 400, Message: "CFDI40139: RFC del receptor no existe"}

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	var ierr *domain.IssuerError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 400, ierr.StatusCode)

	// El rechazo queda documentado en la fila del pago.
	row := f.invoices.rows["pago-77"]
	require.NotNil(t, row)
	assert.Equal(t, entity.InvoiceStatusError, row.Status)
	assert.Equal(t, "CFDI40139: RFC del receptor no existe", row.ErrorMsg)
	assert.Empty(t, row.UUID)
}

func TestIssueInvoice_ErrorDeRedNoEscribeFila(t *testing.T) {
	f := newIssueFixture(t)
	f.issuer.stampErr = errors.New("dial tcp: i/o timeout")

	_, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	require.Error(t, err)
	assert.Empty(t, f.invoices.rows, "un error de transporte no dice nada del documento")
}

func TestIssueInvoice_ReintentoSobreescribeElError(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()

	f.issuer.stampErr = &domain.IssuerError{StatusCode: 400, Message: "CSD vencido"}
	_, err := f.uc.IssueInvoice(ctx, "pago-77")
	require.Error(t, err)
	require.Equal(t, entity.InvoiceStatusError, f.invoices.rows["pago-77"].Status)

	f.issuer.stampErr = nil
	inv, err := f.uc.IssueInvoice(ctx, "pago-77")
	require.NoError(t, err)

	// Sigue habiendo una sola fila y los campos de error quedaron limpios.
	require.Len(t, f.invoices.rows, 1)
	row := f.invoices.rows["pago-77"]
	assert.Equal(t, entity.InvoiceStatusStamped, row.Status)
	assert.Equal(t, inv.UUID, row.UUID)
	assert.Empty(t, row.ErrorMsg)
}

func TestIssueInvoice_ReemisionMantieneUnaFila(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()

	first, err := f.uc.IssueInvoice(ctx, "pago-77")
	require.NoError(t, err)
	second, err := f.uc.IssueInvoice(ctx, "pago-77")
	require.NoError(t, err)

	require.Len(t, f.invoices.rows, 1)
	// El upsert conserva el id de la fila original.
	assert.Equal(t, first.ID, f.invoices.rows["pago-77"].ID)
	assert.Equal(t, second.UUID, f.invoices.rows["pago-77"].UUID)
}

func TestIssueInvoice_FalloDePersistenciaTrasTimbrarDevuelveExito(t *testing.T) {
	f := newIssueFixture(t)
	f.tx.runErr = errors.New("deadlock detected")

	inv, err := f.uc.IssueInvoice(context.Background(), "pago-77")

	// La factura ya existe en el PAC: el caller recibe éxito aunque el
	// bookkeeping local haya fallado.
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", inv.UUID)
}

func TestSyncRecipientProfile_ActualizaSoloSiDifiere(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()

	// Igual al almacenado: sin escritura.
	err := f.uc.SyncRecipientProfile(ctx, "pago-77", f.context("pago-77").Patient.Tax)
	require.NoError(t, err)
	assert.Empty(t, f.patients.updates)

	// Uso CFDI distinto: se persiste el perfil fusionado.
	err = f.uc.SyncRecipientProfile(ctx, "pago-77", entity.TaxProfile{CFDIUse: "G03"})
	require.NoError(t, err)
	require.Len(t, f.patients.updates, 1)
	assert.Equal(t, "G03", f.patients.updates[0].CFDIUse)
	assert.Equal(t, "PEPJ800101AAA", f.patients.updates[0].RFC, "los campos vacíos conservan lo almacenado")
}

func TestSyncRecipientProfile_DireccionNuevaLimpiaElCPEstructurado(t *testing.T) {
	f := newIssueFixture(t)

	err := f.uc.SyncRecipientProfile(context.Background(), "pago-77", entity.TaxProfile{
		FiscalAddress: "Insurgentes Sur 1000, CDMX, 03100",
	})
	require.NoError(t, err)

	require.Len(t, f.patients.updates, 1)
	assert.Equal(t, "Insurgentes Sur 1000, CDMX, 03100", f.patients.updates[0].FiscalAddress)
	assert.Empty(t, f.patients.updates[0].FiscalPostalCode)
}
