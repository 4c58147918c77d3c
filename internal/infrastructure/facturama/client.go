// Package facturama implementa el cliente REST del PAC (proveedor autorizado
// de certificación) que registra emisores, emite api keys y timbra CFDI.
package facturama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/pkg/config"
)

const (
	urlSandbox = "https://apisandbox.facturama.mx"
	urlProd    = "https://api.facturama.mx"

	pathPersons = "/api/personas"
	pathAPIKeys = "/api/apikeys"
	pathCFDI    = "/api/cfdi40/ingreso"

	headerAPIKey      = "F-Api-Key"    // credencial del integrador (toda la plataforma)
	headerSecretKey   = "F-Secret-Key" // api key de la clínica emisora
	headerTimezone    = "Timezone"
	headerIdempotency = "X-Idempotency-Key"
)

// Client cliente HTTP del PAC. El endpoint se selecciona por ambiente en cada
// operación (sandbox | production) según la identidad fiscal de la clínica.
type Client struct {
	httpClient *http.Client
	apiKey     string
	timezone   string
	sandboxURL string
	prodURL    string
}

// NewClient construye el cliente con un timeout de red generoso (60 s): el
// timbrado puede tardar varios segundos del lado del PAC.
func NewClient(cfg config.FacturamaConfig) *Client {
	sandboxURL := cfg.SandboxURL
	if sandboxURL == "" {
		sandboxURL = urlSandbox
	}
	prodURL := cfg.ProdURL
	if prodURL == "" {
		prodURL = urlProd
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     cfg.APIKey,
		timezone:   cfg.Timezone,
		sandboxURL: sandboxURL,
		prodURL:    prodURL,
	}
}

// CreatePerson registra a la clínica como emisor en el PAC y devuelve el id de
// la persona creada.
func (c *Client) CreatePerson(ctx context.Context, env string, in CreatePersonInput) (string, error) {
	var out createPersonResponse
	if err := c.post(ctx, env, pathPersons, "", "", in, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &domain.IssuerError{StatusCode: http.StatusOK, Message: "el PAC no devolvió id de persona"}
	}
	return out.ID, nil
}

// CreateAPIKey emite una api key nueva para la persona dada. El PAC no revoca
// las llaves anteriores: esa es responsabilidad del caller si la quiere.
func (c *Client) CreateAPIKey(ctx context.Context, env, personID, description string) (string, error) {
	in := CreateAPIKeyInput{PersonID: personID, Description: description}
	var out createAPIKeyResponse
	if err := c.post(ctx, env, pathAPIKeys, "", "", in, &out); err != nil {
		return "", err
	}
	if out.APIKey == "" {
		return "", &domain.IssuerError{StatusCode: http.StatusOK, Message: "el PAC no devolvió api key"}
	}
	return out.APIKey, nil
}

// SubmitIncomeInvoice timbra un CFDI de ingreso. tenantKey es la api key de la
// clínica (descifrada); idempotencyKey se deriva del id del pago y se reenvía
// al PAC por si su API deduplica (soporte no confirmado, inocuo si lo ignora).
func (c *Client) SubmitIncomeInvoice(ctx context.Context, env, tenantKey, idempotencyKey string, doc *CFDIDocument) (*StampResult, error) {
	var out StampResult
	if err := c.post(ctx, env, pathCFDI, tenantKey, idempotencyKey, doc, &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		out.Status = entity.InvoiceStatusStamped
	}
	return &out, nil
}

// post serializa el body, arma los headers fijos y decodifica la respuesta.
// Un status no exitoso se convierte en domain.IssuerError con el mensaje
// extraído del cuerpo.
func (c *Client) post(ctx context.Context, env, path, tenantKey, idempotencyKey string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("facturama: serializar petición: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(env)+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("facturama: crear petición: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerTimezone, c.timezone)
	if tenantKey != "" {
		req.Header.Set(headerSecretKey, tenantKey)
	}
	if idempotencyKey != "" {
		req.Header.Set(headerIdempotency, idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("facturama: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("facturama: leer respuesta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.IssuerError{StatusCode: resp.StatusCode, Message: extractErrorMessage(body)}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("facturama: decodificar respuesta: %w", err)
		}
	}
	return nil
}

func (c *Client) baseURL(env string) string {
	if env == entity.EnvironmentProduction {
		return c.prodURL
	}
	return c.sandboxURL
}

// extractErrorMessage saca el mensaje de un cuerpo de error del PAC. La forma
// del error no está garantizada: se intenta JSON con campos conocidos y si no
// parsea se devuelve el texto crudo tal cual.
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"Message"`
		Msg     string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return parsed.Message
		case parsed.Msg != "":
			return parsed.Msg
		case parsed.Error != "":
			return parsed.Error
		}
	}
	return string(body)
}
