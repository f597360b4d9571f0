package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DocumentService stores user-submitted files in object storage: KYC
// verification documents and job completion photos. Objects are prefixed
// per account so one account can never address another's files.
type DocumentService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewDocumentService(cfg *config.MinioConfig) (*DocumentService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &DocumentService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *DocumentService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// upload puts one object and returns a presigned URL for it.
func (s *DocumentService) upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PresignedURL(ctx, objectName)
}

// UploadKYCDocument stores one verification document and returns its
// descriptor. docType must be one of the model document type constants.
func (s *DocumentService) UploadKYCDocument(ctx context.Context, accountID, docType, filename string, reader io.Reader, size int64, contentType string) (*model.KYCDocument, error) {
	objectName := fmt.Sprintf("kyc/%s/%s/%s%s", accountID, strings.ToLower(docType), uuid.New().String(), filepath.Ext(filename))

	url, err := s.upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	return &model.KYCDocument{
		Type:       docType,
		URL:        url,
		Size:       size,
		UploadedAt: time.Now(),
	}, nil
}

// UploadCompletionPhoto stores one job completion photo and returns its URL.
func (s *DocumentService) UploadCompletionPhoto(ctx context.Context, accountID, jobID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("completions/%s/%s/%s%s", accountID, jobID, uuid.New().String(), filepath.Ext(filename))
	return s.upload(ctx, objectName, reader, size, contentType)
}

// PresignedURL generates a presigned GET URL with the configured expiry
func (s *DocumentService) PresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// DeleteObject removes a stored file
func (s *DocumentService) DeleteObject(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
