package fiscal

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/pkg/logger"
	"github.com/clinsalud/fiscal-api/pkg/sat"
)

// TestInvoiceUseCase emite una factura de diagnóstico: receptor genérico,
// siempre contra sandbox, mismo contrato de envío que la factura real. Sirve
// para verificar el CSD y la api key recién guardados sin efectos fiscales.
type TestInvoiceUseCase struct {
	clinicRepo   repository.ClinicRepository
	identityRepo repository.FiscalIdentityRepository
	issuer       IssuerClient
	blobs        BlobStore
	codec        SecretCodec
	log          *logger.Logger
}

// NewTestInvoiceUseCase construye el caso de uso.
func NewTestInvoiceUseCase(
	clinicRepo repository.ClinicRepository,
	identityRepo repository.FiscalIdentityRepository,
	issuer IssuerClient,
	blobs BlobStore,
	codec SecretCodec,
	log *logger.Logger,
) *TestInvoiceUseCase {
	return &TestInvoiceUseCase{
		clinicRepo:   clinicRepo,
		identityRepo: identityRepo,
		issuer:       issuer,
		blobs:        blobs,
		codec:        codec,
		log:          log,
	}
}

// IssueTestInvoice timbra una factura simbólica de 1 MXN en sandbox. No
// persiste nada: el resultado es puramente diagnóstico.
func (uc *TestInvoiceUseCase) IssueTestInvoice(ctx context.Context, clinicID string) (*facturama.StampResult, error) {
	if clinicID == "" {
		return nil, domain.NewValidationError("clinic_id", "requerido")
	}

	clinic, err := uc.clinicRepo.GetByID(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, &domain.NotFoundError{Resource: "clínica", ID: clinicID}
	}

	identity, err := uc.identityRepo.GetByClinicID(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, domain.NewValidationError("identidad fiscal", "la clínica no ha guardado credenciales")
	}
	if field := identity.MissingField(); field != "" {
		return nil, domain.NewValidationError(field, "identidad fiscal incompleta")
	}

	issuerCP := sat.CodigoPostal(clinic.PostalCode, clinic.Address)
	if issuerCP == "" {
		return nil, domain.NewValidationError("código postal del emisor", "no se encontró en la dirección de la clínica")
	}

	cert, err := uc.blobs.Download(ctx, identity.CertPath)
	if err != nil {
		return nil, err
	}
	key, err := uc.blobs.Download(ctx, identity.KeyPath)
	if err != nil {
		return nil, err
	}
	keyPassword, err := uc.codec.Decrypt(identity.KeyPasswordEnc)
	if err != nil {
		return nil, err
	}
	apiKey, err := uc.codec.Decrypt(identity.APIKeyEnc)
	if err != nil {
		return nil, err
	}

	doc := buildCFDIDocument(documentInput{
		identity: identity,
		issuerCP: issuerCP,
		receptor: facturama.Receptor{
			RFC:             sat.RFCPublicoEnGeneral,
			Nombre:          sat.NombrePublicoEnGeneral,
			DomicilioFiscal: issuerCP, // receptor genérico: mismo CP del emisor
			RegimenFiscal:   sat.RegimenSinObligaciones,
			UsoCFDI:         sat.UsoCFDISinEfectosFiscales,
		},
		description: "Factura de prueba de configuración",
		amount:      decimal.NewFromInt(1),
		formaPago:   sat.FormaPagoEfectivo,
		certB64:     base64.StdEncoding.EncodeToString(cert),
		keyB64:      base64.StdEncoding.EncodeToString(key),
		keyPassword: keyPassword,
		now:         time.Now(),
	})

	// Sandbox siempre, sin importar el ambiente configurado de la identidad.
	// Llave de idempotencia aleatoria: cada prueba debe timbrar de nuevo.
	res, err := uc.issuer.SubmitIncomeInvoice(ctx, entity.EnvironmentSandbox, apiKey, "prueba-"+uuid.New().String(), doc)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("clinic_id", clinicID).Str("uuid", res.UUID).Msg("factura de prueba timbrada en sandbox")
	return res, nil
}
