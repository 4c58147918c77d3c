// Package sat contiene catálogos y utilidades alineados a los catálogos del
// SAT para CFDI 4.0 (México): forma de pago, uso de CFDI, régimen fiscal y
// claves de producto/servicio usadas en la facturación de servicios médicos.
package sat

// =============================================================================
// Catálogo c_FormaPago - códigos de uso frecuente en cobros de consultorio
// =============================================================================

const (
	FormaPagoEfectivo      = "01" // Efectivo
	FormaPagoTransferencia = "03" // Transferencia electrónica de fondos
	FormaPagoTarjeta       = "04" // Tarjeta de crédito
	FormaPagoPorDefinir    = "99" // Por definir
)

// Métodos de pago como los registra el colaborador de cobros (entidad Payment).
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
)

// FormaPago mapea el método de pago registrado al código c_FormaPago.
// Es función total: cualquier método no reconocido cae en "99" (por definir).
func FormaPago(metodo string) string {
	switch metodo {
	case PaymentMethodCash:
		return FormaPagoEfectivo
	case PaymentMethodTransfer:
		return FormaPagoTransferencia
	case PaymentMethodCard:
		return FormaPagoTarjeta
	default:
		return FormaPagoPorDefinir
	}
}

// =============================================================================
// Catálogo c_MetodoPago
// =============================================================================

const (
	MetodoPagoPUE = "PUE" // Pago en una sola exhibición (los cobros ya están liquidados)
	MetodoPagoPPD = "PPD" // Pago en parcialidades o diferido
)

// =============================================================================
// Catálogo c_UsoCFDI - valores de uso común para receptores de servicios médicos
// =============================================================================

const (
	UsoCFDIHonorariosMedicos = "D01" // Honorarios médicos, dentales y gastos hospitalarios
	UsoCFDIGastosEnGeneral   = "G03" // Gastos en general
	UsoCFDISinEfectosFiscales = "S01" // Sin efectos fiscales (receptor genérico)
)

// =============================================================================
// Catálogo c_RegimenFiscal - los que aparecen en la práctica en consultorios
// =============================================================================

const (
	RegimenPersonasMorales       = "601" // General de Ley Personas Morales
	RegimenHonorarios            = "612" // Personas Físicas con Actividades Empresariales y Profesionales
	RegimenSinObligaciones       = "616" // Sin obligaciones fiscales (receptor genérico)
	RegimenSimplificadoConfianza = "626" // Régimen Simplificado de Confianza (RESICO)
)

// =============================================================================
// Catálogos c_ClaveProdServ y c_ClaveUnidad para el concepto único de la factura
// =============================================================================

const (
	ClaveProdServServiciosMedicos = "85121600" // Servicios de médicos especialistas
	ClaveUnidadServicio           = "E48"      // Unidad de servicio
)

// =============================================================================
// Catálogo c_ObjetoImp
// =============================================================================

const (
	ObjetoImpNoObjeto = "01" // No objeto de impuesto: el concepto no lleva desglose de impuestos
	ObjetoImpSiObjeto = "02" // Sí objeto de impuesto
)

// Receptor genérico para facturas de diagnóstico (sandbox).
const (
	RFCPublicoEnGeneral    = "XAXX010101000"
	NombrePublicoEnGeneral = "PUBLICO EN GENERAL"
)
