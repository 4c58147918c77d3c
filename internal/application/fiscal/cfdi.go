package fiscal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/pkg/sat"
)

const (
	cfdiVersion = "4.0"
	cfdiSerie   = "CS" // serie fija de la plataforma
	cfdiMoneda  = "MXN"
	fechaLayout = "2006-01-02T15:04:05"
)

// documentInput datos ya resueltos para armar el documento de timbrado.
type documentInput struct {
	identity    *entity.FiscalIdentity
	issuerCP    string
	receptor    facturama.Receptor
	description string
	productKey  string
	unitKey     string
	amount      decimal.Decimal
	formaPago   string
	certB64     string
	keyB64      string
	keyPassword string
	now         time.Time
}

// buildCFDIDocument arma el CFDI 4.0 de ingreso: concepto único con cantidad 1,
// precio unitario igual al monto del cobro redondeado a 6 decimales y ObjetoImp
// "01" sin arreglo de impuestos (así el PAC marca el servicio médico exento).
func buildCFDIDocument(in documentInput) *facturama.CFDIDocument {
	productKey := in.productKey
	if productKey == "" {
		productKey = sat.ClaveProdServServiciosMedicos
	}
	unitKey := in.unitKey
	if unitKey == "" {
		unitKey = sat.ClaveUnidadServicio
	}
	amount := in.amount.Round(6)

	return &facturama.CFDIDocument{
		Version:         cfdiVersion,
		Serie:           cfdiSerie,
		Fecha:           in.now.Format(fechaLayout),
		FormaPago:       in.formaPago,
		MetodoPago:      sat.MetodoPagoPUE,
		Moneda:          cfdiMoneda,
		LugarExpedicion: in.issuerCP,
		Emisor: facturama.Emisor{
			RFC:           in.identity.RFC,
			Nombre:        in.identity.LegalName,
			RegimenFiscal: in.identity.TaxRegime,
			Certificado:   in.certB64,
			Llave:         in.keyB64,
			PasswordLlave: in.keyPassword,
		},
		Receptor: in.receptor,
		Conceptos: []facturama.Concepto{{
			ClaveProdServ: productKey,
			ClaveUnidad:   unitKey,
			Cantidad:      "1",
			Descripcion:   in.description,
			ValorUnitario: amount.StringFixed(6),
			Importe:       amount.StringFixed(6),
			ObjetoImp:     sat.ObjetoImpNoObjeto,
		}},
	}
}
