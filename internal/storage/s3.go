package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"alcyxob/workout-telemetry/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

const defaultUploadTimeout = 2 * time.Minute

// objectUploader is the part of manager.Uploader used here.
type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// objectAPI is the part of the s3 client used here.
type objectAPI interface {
	s3.ListObjectsV2APIClient
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

// s3Storage implements FileStorage using an S3-compatible backend.
type s3Storage struct {
	client        objectAPI
	uploader      objectUploader
	bucketName    string
	publicBaseURL string
	uploadTimeout time.Duration
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.MediaConfig) (FileStorage, error) {
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// path-style addressing is required by most S3-compatible services (MinIO, Spaces)
	client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	log.Infof("media storage initialized for endpoint: [%s], bucket: [%s]", cfg.Endpoint, cfg.BucketName)

	return newS3Storage(client, manager.NewUploader(client), cfg), nil
}

func newS3Storage(client objectAPI, uploader objectUploader, cfg config.MediaConfig) *s3Storage {
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &s3Storage{
		client:        client,
		uploader:      uploader,
		bucketName:    cfg.BucketName,
		publicBaseURL: publicBaseURL(cfg),
		uploadTimeout: timeout,
	}
}

func (s *s3Storage) Upload(ctx context.Context, kind Kind, data, folder, publicID string) (string, error) {
	contentType, payload, err := ParseDataURL(data, kind)
	if err != nil {
		return "", &UploadError{Kind: kind, Err: err}
	}
	key := ObjectKey(folder, publicID, Extension(kind, contentType))

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", &UploadError{Kind: kind, Key: key, Err: err}
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *s3Storage) MakePublic(ctx context.Context, key string) error {
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	return err
}

func (s *s3Storage) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// publicBaseURL is where uploaded objects can be fetched from, without a
// trailing slash.
func publicBaseURL(cfg config.MediaConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.BucketName
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, cfg.Region)
	}
}
