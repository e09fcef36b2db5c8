package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/pkg/config"
)

var _ Archiver = (*MinIOArchiver)(nil)

// MinIOArchiver sube cada exportación a <bucket>/exports/<libro>/<archivo>.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver crea el cliente. Devuelve nil, nil si MinIO no está configurado.
func NewMinIOArchiver(cfg config.MinIOConfig) (*MinIOArchiver, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: crear cliente: %w", err)
	}
	return &MinIOArchiver{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket crea el bucket si no existe.
func (a *MinIOArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("minio: verificar bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: crear bucket: %w", err)
	}
	return nil
}

// ObjectName ruta del objeto dentro del bucket.
func ObjectName(kind entity.LedgerKind, filename string) string {
	return fmt.Sprintf("exports/%s/%s", kind, filename)
}

// Archive sube el documento.
func (a *MinIOArchiver) Archive(ctx context.Context, kind entity.LedgerKind, doc *dto.ExportFile) error {
	_, err := a.client.PutObject(ctx, a.bucket, ObjectName(kind, doc.Filename), bytes.NewReader(doc.Data), int64(len(doc.Data)), minio.PutObjectOptions{
		ContentType: doc.ContentType,
	})
	if err != nil {
		return fmt.Errorf("minio: subir %s: %w", doc.Filename, err)
	}
	return nil
}
