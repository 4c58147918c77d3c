package sat

import "regexp"

// Los códigos postales mexicanos son exactamente 5 dígitos.
var cpPattern = regexp.MustCompile(`\b\d{5}\b`)

// ExtraerCodigoPostal busca la primera corrida de 5 dígitos en una dirección de
// texto libre. Es el fallback para registros heredados que no capturaron el
// código postal como campo estructurado; devuelve "" si no hay corrida de 5
// dígitos en la cadena.
func ExtraerCodigoPostal(direccion string) string {
	return cpPattern.FindString(direccion)
}

// CodigoPostal devuelve el código postal estructurado si existe y, si no, lo
// intenta extraer de la dirección de texto libre (datos heredados).
func CodigoPostal(estructurado, direccion string) string {
	if estructurado != "" {
		return estructurado
	}
	return ExtraerCodigoPostal(direccion)
}
