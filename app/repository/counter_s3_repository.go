package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

const s3Prefix = "counts/"

// S3API is the subset of the S3 client the counter store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// s3CounterRepository keeps one JSON object per date under counts/.
type s3CounterRepository struct {
	client S3API
	bucket string
}

// S3Config holds the object store settings
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
}

// LoadS3Config loads S3 configuration from environment variables
func LoadS3Config() (*S3Config, error) {
	cfg := &S3Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
	}
	if cfg.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required for the s3 store")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for the s3 store")
	}
	return cfg, nil
}

// NewS3Client creates the AWS client for cfg.
func NewS3Client(ctx context.Context, cfg *S3Config) (*s3.Client, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3CounterRepository creates an S3-backed counter store
func NewS3CounterRepository(client S3API, bucket string) CounterRepository {
	return &s3CounterRepository{client: client, bucket: bucket}
}

func objectKey(date string) string {
	return s3Prefix + url.PathEscape(date) + ".json"
}

func (r *s3CounterRepository) Get(ctx context.Context, date string) (*tally.Stored, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey(date)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", objectKey(date), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	stored, err := tally.Decode(data)
	if err != nil {
		return nil, err
	}
	stored.Date = date
	return &stored, nil
}

func (r *s3CounterRepository) Save(ctx context.Context, rec tally.Record) error {
	data, err := tally.Encode(rec)
	if err != nil {
		return err
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(objectKey(rec.Date)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", objectKey(rec.Date), err)
	}
	return nil
}

// Reset lists the prefix page by page and deletes each page in one request.
func (r *s3CounterRepository) Reset(ctx context.Context) (int64, error) {
	var deleted int64
	var token *string

	for {
		page, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(s3Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, fmt.Errorf("list %s: %w", s3Prefix, err)
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasPrefix(*obj.Key, s3Prefix) {
				continue
			}
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}

		if len(ids) > 0 {
			out, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(r.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return deleted, fmt.Errorf("delete %s: %w", s3Prefix, err)
			}
			for _, e := range out.Errors {
				log.Warnf("[Store] Could not delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
			}
			deleted += int64(len(ids) - len(out.Errors))
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			return deleted, nil
		}
		token = page.NextContinuationToken
	}
}

func (r *s3CounterRepository) Driver() string {
	return DriverS3
}
