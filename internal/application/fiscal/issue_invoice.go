package fiscal

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/pkg/logger"
	"github.com/clinsalud/fiscal-api/pkg/sat"
)

// IssueInvoiceUseCase convierte un cobro registrado en un CFDI timbrado con a
// lo sumo una fila local por pago. El resultado local se deduplica por upsert;
// el advisory lock por pago evita además el timbrado duplicado del lado del
// PAC cuando dos peticiones llegan al mismo tiempo.
type IssueInvoiceUseCase struct {
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	patientRepo repository.PatientRepository
	txRunner    TxRunner
	issuer      IssuerClient
	blobs       BlobStore
	codec       SecretCodec
	log         *logger.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	patientRepo repository.PatientRepository,
	txRunner TxRunner,
	issuer IssuerClient,
	blobs BlobStore,
	codec SecretCodec,
	log *logger.Logger,
) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		patientRepo: patientRepo,
		txRunner:    txRunner,
		issuer:      issuer,
		blobs:       blobs,
		codec:       codec,
		log:         log,
	}
}

// SyncRecipientProfile persiste el perfil fiscal del receptor cuando difiere
// del almacenado. Es un comando explícito separado del timbrado para conservar
// la separación comando/consulta; el handler lo invoca antes de IssueInvoice.
func (uc *IssueInvoiceUseCase) SyncRecipientProfile(ctx context.Context, paymentID string, supplied entity.TaxProfile) error {
	ic, err := uc.paymentRepo.GetIssuanceContext(ctx, paymentID)
	if err != nil {
		return err
	}
	if ic == nil {
		return &domain.NotFoundError{Resource: "pago", ID: paymentID}
	}

	// Campos vacíos en la petición conservan el valor almacenado.
	merged := ic.Patient.Tax
	if supplied.RFC != "" {
		merged.RFC = supplied.RFC
	}
	if supplied.FiscalAddress != "" {
		merged.FiscalAddress = supplied.FiscalAddress
		merged.FiscalPostalCode = supplied.FiscalPostalCode
	}
	if supplied.TaxRegime != "" {
		merged.TaxRegime = supplied.TaxRegime
	}
	if supplied.CFDIUse != "" {
		merged.CFDIUse = supplied.CFDIUse
	}

	if merged.Equal(ic.Patient.Tax) {
		return nil
	}
	return uc.patientRepo.UpdateTaxProfile(ctx, ic.Patient.ID, merged)
}

// IssueInvoice timbra el cobro dado. Todo el intento (lecturas locales,
// llamada al PAC y escritura del resultado) corre bajo el advisory lock del
// pago; el bookkeeping local de éxito corre además en su propia transacción.
func (uc *IssueInvoiceUseCase) IssueInvoice(ctx context.Context, paymentID string) (*entity.Invoice, error) {
	if paymentID == "" {
		return nil, domain.NewValidationError("payment_id", "requerido")
	}

	var result *entity.Invoice
	err := uc.txRunner.WithPaymentLock(ctx, paymentID, func(ctx context.Context) error {
		inv, err := uc.issue(ctx, paymentID)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *IssueInvoiceUseCase) issue(ctx context.Context, paymentID string) (*entity.Invoice, error) {
	// 1. Lectura consistente de pago + joins + identidad fiscal.
	ic, err := uc.paymentRepo.GetIssuanceContext(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if ic == nil {
		return nil, &domain.NotFoundError{Resource: "pago", ID: paymentID}
	}

	// 2. Una identidad parcial es inutilizable: validar campo a campo antes de
	// tocar storage o PAC.
	if ic.Identity == nil {
		return nil, domain.NewValidationError("identidad fiscal", "la clínica no ha guardado credenciales")
	}
	if field := ic.Identity.MissingField(); field != "" {
		return nil, domain.NewValidationError(field, "identidad fiscal incompleta")
	}

	// 3. Códigos postales: campo estructurado primero, heurístico sobre la
	// dirección de texto libre como fallback de datos heredados.
	issuerCP := sat.CodigoPostal(ic.Clinic.PostalCode, ic.Clinic.Address)
	if issuerCP == "" {
		return nil, domain.NewValidationError("código postal del emisor", "no se encontró en la dirección de la clínica")
	}
	recipientCP := sat.CodigoPostal(ic.Patient.Tax.FiscalPostalCode, ic.Patient.Tax.FiscalAddress)
	if recipientCP == "" {
		return nil, domain.NewValidationError("código postal del receptor", "no se encontró en el domicilio fiscal del paciente")
	}

	// 4. Descargar el CSD y descifrar los secretos.
	cert, err := uc.blobs.Download(ctx, ic.Identity.CertPath)
	if err != nil {
		return nil, err
	}
	key, err := uc.blobs.Download(ctx, ic.Identity.KeyPath)
	if err != nil {
		return nil, err
	}
	keyPassword, err := uc.codec.Decrypt(ic.Identity.KeyPasswordEnc)
	if err != nil {
		return nil, err
	}
	apiKey, err := uc.codec.Decrypt(ic.Identity.APIKeyEnc)
	if err != nil {
		return nil, err
	}

	// 5. Armar el documento de timbrado.
	doc := buildCFDIDocument(documentInput{
		identity: ic.Identity,
		issuerCP: issuerCP,
		receptor: facturama.Receptor{
			RFC:             ic.Patient.Tax.RFC,
			Nombre:          ic.Patient.Name,
			DomicilioFiscal: recipientCP,
			RegimenFiscal:   ic.Patient.Tax.TaxRegime,
			UsoCFDI:         ic.Patient.Tax.CFDIUse,
		},
		description: ic.Service.Name,
		productKey:  ic.Service.SATProductKey,
		unitKey:     ic.Service.SATUnitKey,
		amount:      ic.Payment.Amount,
		formaPago:   sat.FormaPago(ic.Payment.Method),
		certB64:     base64.StdEncoding.EncodeToString(cert),
		keyB64:      base64.StdEncoding.EncodeToString(key),
		keyPassword: keyPassword,
		now:         time.Now(),
	})

	// 6. Enviar al ambiente de la identidad, con llave de idempotencia
	// determinista por pago (soporte del PAC no confirmado; inocua si la ignora).
	res, err := uc.issuer.SubmitIncomeInvoice(ctx, ic.Identity.Environment, apiKey, "pago-"+paymentID, doc)
	if err != nil {
		var issuerErr *domain.IssuerError
		if errors.As(err, &issuerErr) {
			// Registrar el rechazo con mejor esfuerzo: si esta escritura
			// secundaria falla solo se loggea, nunca escala.
			uc.recordError(ctx, ic, issuerErr.Message)
		}
		return nil, err
	}

	// 7. Persistir el resultado. El timbrado ya ocurrió: un fallo local aquí es
	// una inconsistencia crítica no fatal y el caller recibe éxito igual.
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		PaymentID: paymentID,
		ClinicID:  ic.Clinic.ID,
		UUID:      res.UUID,
		Status:    res.Status,
		PDFURL:    res.PDFURL,
		XMLURL:    res.XMLURL,
	}
	err = uc.txRunner.RunFiscal(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PatientRepository,
		_ repository.FiscalIdentityRepository,
	) error {
		return invoiceRepo.UpsertByPaymentID(ctx, inv)
	})
	if err != nil {
		perr := &domain.PersistenceError{Op: "upsert factura pago " + paymentID, Err: err}
		uc.log.Error().Err(perr).
			Str("payment_id", paymentID).
			Str("uuid", inv.UUID).
			Msg("inconsistencia crítica: la factura existe en el PAC pero no localmente")
	}
	return inv, nil
}

// recordError guarda una fila de factura en estado de error (upsert por pago).
func (uc *IssueInvoiceUseCase) recordError(ctx context.Context, ic *repository.IssuanceContext, msg string) {
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		PaymentID: ic.Payment.ID,
		ClinicID:  ic.Clinic.ID,
		Status:    entity.InvoiceStatusError,
		ErrorMsg:  msg,
	}
	if err := uc.invoiceRepo.UpsertByPaymentID(ctx, inv); err != nil {
		uc.log.Warn().Err(err).Str("payment_id", ic.Payment.ID).Msg("no se pudo registrar la factura en error")
	}
}
