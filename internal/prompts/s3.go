package prompts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"model_catalog/internal/providers"
	"model_catalog/internal/utils"
)

// maxTemplateBytes bounds template downloads.
const maxTemplateBytes = 256 << 10

// ObjectGetter is the part of the S3 client the store needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads templates from an S3 bucket; the object key is prefix + id.
type S3Store struct {
	client ObjectGetter
	bucket string
	prefix string
	logger *utils.Logger
}

// S3Config configures NewS3Store. Endpoint is used for S3-compatible
// services such as MinIO and switches to path-style addressing.
type S3Config struct {
	Bucket      string
	Prefix      string
	Region      string
	Endpoint    string
	Credentials *providers.StaticCredentials
}

// NewS3Store creates an S3-backed store using the default AWS credential chain
// unless static credentials are given.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("prompts: S3 bucket is required")
	}

	awsCfg, err := providers.LoadAWSConfig(ctx, cfg.Region, nil, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3StoreWithClient creates a store around an existing client.
func NewS3StoreWithClient(client ObjectGetter, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: utils.NewLogger("prompts-s3"),
	}
}

func (s *S3Store) Get(ctx context.Context, id string) (*PromptTemplate, error) {
	rel, err := cleanID(id)
	if err != nil {
		return nil, err
	}
	key := s.prefix + rel

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			s.logger.Debug("Prompt template not in bucket", "bucket", s.bucket, "key", key)
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("failed to download prompt template %s: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxTemplateBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template %s: %w", id, err)
	}
	return parseNamed(id, data)
}
