package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio fiscal (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Facturama FacturamaConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// FacturamaConfig configuración del PAC (proveedor autorizado de certificación).
// La APIKey es la credencial del integrador (toda la plataforma); la llave por
// clínica se emite vía aprovisionamiento y vive cifrada en la DB.
type FacturamaConfig struct {
	APIKey      string // credencial del integrador (header F-Api-Key)
	Timezone    string // zona horaria fija enviada en cada petición (header Timezone)
	LoginDomain string // dominio para el login sintético de personas (csd.<rfc>@<dominio>)
	SandboxURL  string // override del endpoint sandbox (vacío = default)
	ProdURL     string // override del endpoint producción (vacío = default)
}

// StorageConfig configuración del object storage S3-compatible donde viven los
// blobs del CSD (certificado .cer y llave .key) por clínica.
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// SecretsConfig llaves maestras para el cifrado de secretos en reposo (pkg/secretbox).
// Keys mapea versión -> llave maestra en base64; ActiveVersion indica con cuál se cifra.
// Las versiones anteriores se conservan para descifrar ciphertext viejo (rotación).
type SecretsConfig struct {
	ActiveVersion string
	Keys          map[string]string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig validación de tokens emitidos por la app principal (secreto compartido).
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, FACTURAMA_API_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "fiscal-api"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "clinsalud_fiscal"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "clinsalud"),
		},
		Facturama: FacturamaConfig{
			APIKey:      getString(v, "FACTURAMA_API_KEY", ""),
			Timezone:    getString(v, "FACTURAMA_TIMEZONE", "America/Mexico_City"),
			LoginDomain: getString(v, "FACTURAMA_LOGIN_DOMAIN", "clinsalud.mx"),
			SandboxURL:  getString(v, "FACTURAMA_SANDBOX_URL", ""),
			ProdURL:     getString(v, "FACTURAMA_PROD_URL", ""),
		},
		Storage: StorageConfig{
			Endpoint:     getString(v, "STORAGE_ENDPOINT", "http://localhost:9000"),
			Region:       getString(v, "STORAGE_REGION", "us-east-1"),
			Bucket:       getString(v, "STORAGE_BUCKET", "clinsalud-csd"),
			AccessKey:    getString(v, "STORAGE_ACCESS_KEY", ""),
			SecretKey:    getString(v, "STORAGE_SECRET_KEY", ""),
			UseSSL:       getBool(v, "STORAGE_USE_SSL", false),
			UsePathStyle: getBool(v, "STORAGE_PATH_STYLE", true),
		},
		Secrets: SecretsConfig{
			ActiveVersion: getString(v, "SECRETS_ACTIVE_VERSION", "1"),
			Keys:          parseKeyRing(getString(v, "SECRETS_KEYS", "")),
		},
	}

	return cfg, nil
}

// parseKeyRing interpreta "1=base64llave;2=base64llave" como el llavero de versiones.
func parseKeyRing(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		keys[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return keys
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
