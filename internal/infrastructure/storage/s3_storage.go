// Package storage accede al object storage S3-compatible donde viven los
// blobs del CSD (certificado y llave privada) de cada clínica.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/pkg/config"
)

// S3BlobStore descarga y sube blobs por ruta. Compatible con cualquier
// almacenamiento S3 (AWS S3, MinIO, RustFS).
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// NewS3BlobStore construye el cliente desde la configuración.
func NewS3BlobStore(cfg config.StorageConfig) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket requerido")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage: credenciales requeridas")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: configurar cliente AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &S3BlobStore{client: client, bucket: cfg.Bucket}, nil
}

// Download descarga el blob completo en la ruta dada. Un fallo se reporta como
// domain.StorageError con la ruta que no se pudo leer.
func (s *S3BlobStore) Download(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, &domain.StorageError{Path: path, Err: errors.New("ruta vacía")}
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	return data, nil
}

// Exists informa si hay un objeto en la ruta (para validar las rutas del CSD
// al guardar credenciales, antes de tocar al PAC).
func (s *S3BlobStore) Exists(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Algunos servicios S3-compatibles reportan el 404 de otra forma.
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, &domain.StorageError{Path: path, Err: err}
	}
	return true, nil
}
