package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config — параметры подключения к S3/MinIO.
type S3Config struct {
	// Endpoint — адрес MinIO (например, "minio:9000").
	// Пустой для AWS S3.
	Endpoint string

	// Region — регион (для MinIO по умолчанию us-east-1).
	Region string

	AccessKeyID     string
	SecretAccessKey string

	// UseSSL — HTTPS для Endpoint.
	UseSSL bool
}

// S3Backend — бэкенд S3/MinIO. Бакет берётся из URI.
type S3Backend struct {
	client *s3.Client
}

// NewS3Backend создаёт бэкенд S3.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO и старые S3-совместимые хранилища не принимают
		// контрольные суммы в трейлерах
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired

		if cfg.Endpoint != "" {
			scheme := "http"
			if cfg.UseSSL {
				scheme = "https"
			}
			o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", scheme, cfg.Endpoint))
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client}, nil
}

// Open читает объект.
func (b *S3Backend) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", loc, err)
	}
	return out.Body, nil
}

// Put записывает объект.
func (b *S3Backend) Put(ctx context.Context, loc Location, content []byte, contentType string) (*ObjectRef, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", loc, err)
	}

	return newObjectRef(loc.String(), contentType, content), nil
}
