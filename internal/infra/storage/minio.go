package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
)

// objectPutter is the part of *minio.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive writes every persisted scan as a JSON object into a bucket.
type Archive struct {
	client     objectPutter
	bucketName string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Archive, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Archive{client: cli, bucketName: bucket}, nil
}

func (a *Archive) Name() string { return "minio" }

// Publish implementasi domain.Sink
func (a *Archive) Publish(ctx context.Context, rec *domain.ScanRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, a.bucketName, ObjectKey(rec), bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive scan %d: %w", rec.ID, err)
	}
	return nil
}

// ObjectKey partitions archived scans by UTC day: scans/YYYY/MM/DD/<id>.json
func ObjectKey(rec *domain.ScanRecord) string {
	return fmt.Sprintf("scans/%s/%d.json", rec.ScannedAt.UTC().Format("2006/01/02"), rec.ID)
}
