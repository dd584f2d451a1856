package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/maheshrc27/postpilot/configs"
	"go.uber.org/zap"
)

// ObjectStore archives raw uploads.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// R2Service stores objects in a Cloudflare R2 bucket through its S3 API.
type R2Service struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

func NewR2Service(ctx context.Context, cfg config.R2, logger *zap.Logger) (*R2Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return &R2Service{client: client, bucket: cfg.BucketName, logger: logger}, nil
}

func (r *R2Service) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		r.logger.Error("r2 upload failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
