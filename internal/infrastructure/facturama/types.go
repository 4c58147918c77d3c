package facturama

// Tipos del contrato REST con el PAC. Los nombres de campo JSON siguen el API
// del proveedor (PascalCase).

// CreatePersonInput alta de una persona (emisor) en la cuenta del integrador.
type CreatePersonInput struct {
	RFC       string `json:"Rfc"`
	LegalName string `json:"RazonSocial"`
	Email     string `json:"Email"`    // login sintético derivado del RFC
	Password  string `json:"Password"` // generada al vuelo, nunca se persiste
}

type createPersonResponse struct {
	ID string `json:"Id"`
}

// CreateAPIKeyInput emisión de una api key nueva para una persona.
type CreateAPIKeyInput struct {
	PersonID    string `json:"PersonaId"`
	Description string `json:"Descripcion"`
}

type createAPIKeyResponse struct {
	APIKey string `json:"ApiKey"`
}

// CFDIDocument es el documento de timbrado versionado (CFDI 4.0) que se envía
// al PAC. El concepto único no lleva arreglo de impuestos: su ausencia es lo
// que le indica al PAC la exención del servicio.
type CFDIDocument struct {
	Version         string     `json:"Version"` // fija "4.0"
	Serie           string     `json:"Serie"`
	Fecha           string     `json:"Fecha"` // timestamp local del timbrado
	FormaPago       string     `json:"FormaPago"`
	MetodoPago      string     `json:"MetodoPago"` // PUE: el cobro ya está liquidado
	Moneda          string     `json:"Moneda"`     // fija MXN
	LugarExpedicion string     `json:"LugarExpedicion"`
	Emisor          Emisor     `json:"Emisor"`
	Receptor        Receptor   `json:"Receptor"`
	Conceptos       []Concepto `json:"Conceptos"`
}

// Emisor bloque del emisor con los archivos del CSD codificados en base64 y la
// contraseña de la llave ya descifrada.
type Emisor struct {
	RFC           string `json:"Rfc"`
	Nombre        string `json:"Nombre"`
	RegimenFiscal string `json:"RegimenFiscal"`
	Certificado   string `json:"Certificado"`   // .cer en base64
	Llave         string `json:"Llave"`         // .key en base64
	PasswordLlave string `json:"PasswordLlave"` // contraseña en claro, solo en tránsito
}

// Receptor bloque del receptor.
type Receptor struct {
	RFC             string `json:"Rfc"`
	Nombre          string `json:"Nombre"`
	DomicilioFiscal string `json:"DomicilioFiscalReceptor"` // código postal
	RegimenFiscal   string `json:"RegimenFiscalReceptor"`
	UsoCFDI         string `json:"UsoCFDI"`
}

// Concepto línea única de la factura (cantidad 1, precio = monto del cobro).
type Concepto struct {
	ClaveProdServ string `json:"ClaveProdServ"`
	ClaveUnidad   string `json:"ClaveUnidad"`
	Cantidad      string `json:"Cantidad"`
	Descripcion   string `json:"Descripcion"`
	ValorUnitario string `json:"ValorUnitario"` // redondeado a 6 decimales
	Importe       string `json:"Importe"`
	ObjetoImp     string `json:"ObjetoImp"` // "01": no objeto de impuesto (exento)
}

// StampResult resultado del timbrado exitoso.
type StampResult struct {
	UUID   string `json:"Uuid"`
	Status string `json:"Status"`
	PDFURL string `json:"PdfUrl"`
	XMLURL string `json:"XmlUrl"`
}
