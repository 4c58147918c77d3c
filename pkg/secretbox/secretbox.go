// Package secretbox cifra secretos en reposo (contraseña de la llave CSD,
// api key del PAC) con cifrado autenticado y llaves versionadas.
//
// Formato almacenado: "v<versión>:<base64(nonce||ciphertext)>". La versión
// embebida permite rotar la llave maestra sin invalidar ciphertext anterior:
// se cifra siempre con la versión activa y se descifra con la versión que
// indique el propio valor.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	keySize = 32 // AES-256
	prefix  = "v"
	infoTag = "clinsalud/secretbox"
)

// Codec cifra y descifra secretos con AES-256-GCM. La llave de datos de cada
// versión se deriva vía HKDF-SHA256 de la llave maestra correspondiente,
// usando la versión como salt para que dos versiones nunca compartan llave.
type Codec struct {
	activeVersion string
	keys          map[string][]byte // versión -> llave de datos derivada
}

// New construye el codec. masterKeys mapea versión -> llave maestra en base64
// (mínimo 32 bytes decodificados); activeVersion debe existir en el mapa.
func New(activeVersion string, masterKeys map[string]string) (*Codec, error) {
	if activeVersion == "" {
		return nil, fmt.Errorf("secretbox: versión activa vacía")
	}
	if len(masterKeys) == 0 {
		return nil, fmt.Errorf("secretbox: sin llaves maestras configuradas")
	}
	keys := make(map[string][]byte, len(masterKeys))
	for version, encoded := range masterKeys {
		master, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("secretbox: llave maestra v%s no es base64: %w", version, err)
		}
		if len(master) < keySize {
			return nil, fmt.Errorf("secretbox: llave maestra v%s muy corta (%d bytes, mínimo %d)", version, len(master), keySize)
		}
		derived, err := deriveKey(master, version)
		if err != nil {
			return nil, err
		}
		keys[version] = derived
	}
	if _, ok := keys[activeVersion]; !ok {
		return nil, fmt.Errorf("secretbox: versión activa %q sin llave maestra", activeVersion)
	}
	return &Codec{activeVersion: activeVersion, keys: keys}, nil
}

// Encrypt cifra el secreto con la versión activa y devuelve la forma almacenable.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	gcm, err := c.aead(c.activeVersion)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secretbox: generar nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + c.activeVersion + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt recupera el secreto en claro. La versión de llave se toma del propio
// valor almacenado; ciphertext alterado o de versión desconocida falla.
func (c *Codec) Decrypt(stored string) (string, error) {
	version, payload, err := splitStored(stored)
	if err != nil {
		return "", err
	}
	gcm, err := c.aead(version)
	if err != nil {
		return "", err
	}
	sealed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("secretbox: payload no es base64: %w", err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", fmt.Errorf("secretbox: payload truncado")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: descifrado falló (ciphertext alterado o llave incorrecta)")
	}
	return string(plaintext), nil
}

// ActiveVersion devuelve la versión con la que se cifra actualmente.
func (c *Codec) ActiveVersion() string {
	return c.activeVersion
}

func (c *Codec) aead(version string) (cipher.AEAD, error) {
	key, ok := c.keys[version]
	if !ok {
		return nil, fmt.Errorf("secretbox: versión de llave desconocida %q", version)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: crear cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func deriveKey(master []byte, version string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, []byte(version), []byte(infoTag))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secretbox: derivar llave v%s: %w", version, err)
	}
	return key, nil
}

func splitStored(stored string) (version, payload string, err error) {
	if !strings.HasPrefix(stored, prefix) {
		return "", "", fmt.Errorf("secretbox: formato almacenado inválido")
	}
	rest := stored[len(prefix):]
	idx := strings.IndexByte(rest, ':')
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("secretbox: formato almacenado inválido")
	}
	return rest[:idx], rest[idx+1:], nil
}
