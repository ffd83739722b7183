package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	s3config "photolister/internal/config"
)

type S3Repository interface {
	UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	MakePublicRead(ctx context.Context, key string) error
	PublicURL(key string) string
}

type s3Repository struct {
	client *s3.Client
	cfg    *s3config.S3Config
	log    *zap.Logger
}

func NewS3Repository(cfg *s3config.S3Config, log *zap.Logger) (S3Repository, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				URL:               endpointURL(cfg),
				HostnameImmutable: true,
				Source:            aws.EndpointSourceCustom,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithEndpointResolverWithOptions(customResolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &s3Repository{
		client: client,
		cfg:    cfg,
		log:    log,
	}, nil
}

func (r *s3Repository) UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})

	if err != nil {
		r.log.Error("Failed to upload file to S3",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	r.log.Info("File uploaded to S3",
		zap.String("key", key),
		zap.Int64("size", size))

	return nil
}

func (r *s3Repository) MakePublicRead(ctx context.Context, key string) error {
	_, err := r.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(r.cfg.BucketName),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	return err
}

// PublicURL derives the deterministic public URL for an uploaded object:
// path-style against a custom endpoint, virtual-host style on AWS proper.
func (r *s3Repository) PublicURL(key string) string {
	return PublicURL(r.cfg, key)
}

func PublicURL(cfg *s3config.S3Config, key string) string {
	if cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(endpointURL(cfg), "/"), cfg.BucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.BucketName, cfg.Region, key)
}

func endpointURL(cfg *s3config.S3Config) string {
	if strings.Contains(cfg.Endpoint, "://") {
		return cfg.Endpoint
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
