package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"model_catalog/internal/utils"
)

// StaticCredentials are explicit AWS keys. They are only used when no
// profile is requested; otherwise the default credential chain applies.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func (c *StaticCredentials) isSet() bool {
	return c != nil && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// LoadAWSConfig loads an aws.Config for region. A non-empty profile selects
// a shared config profile and takes precedence over static credentials.
func LoadAWSConfig(ctx context.Context, region string, profile *string, static *StaticCredentials) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	switch {
	case profile != nil && *profile != "":
		opts = append(opts, config.WithSharedConfigProfile(*profile))
	case static.isSet():
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			static.AccessKeyID,
			static.SecretAccessKey,
			static.SessionToken,
		)))
	}

	return config.LoadDefaultConfig(ctx, opts...)
}

// AWSClientResolver resolves Bedrock runtime clients with the AWS SDK. Every
// call loads configuration afresh; nothing is cached.
type AWSClientResolver struct {
	static *StaticCredentials
	logger *utils.Logger
}

// NewAWSClientResolver creates a resolver. static may be nil.
func NewAWSClientResolver(static *StaticCredentials) *AWSClientResolver {
	return &AWSClientResolver{
		static: static,
		logger: utils.NewLogger("aws-resolver"),
	}
}

// ResolveClient implements ClientResolver. Configuration loading errors are
// returned unmodified.
func (r *AWSClientResolver) ResolveClient(ctx context.Context, req ClientRequest) (BedrockInvoker, error) {
	if req.ServiceName != BedrockRuntimeService {
		return nil, fmt.Errorf("unsupported service %q", req.ServiceName)
	}

	cfg, err := LoadAWSConfig(ctx, req.Region, req.Profile, r.static)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Resolved Bedrock runtime client", "region", req.Region, "endpoint_override", req.EndpointURL != nil)

	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if req.EndpointURL != nil && *req.EndpointURL != "" {
			o.BaseEndpoint = aws.String(*req.EndpointURL)
		}
	}), nil
}

// NewFoundationModelClient creates a Bedrock control-plane client, used to
// discover the models available in a region.
func NewFoundationModelClient(ctx context.Context, region string, endpointURL, profile *string, static *StaticCredentials) (*bedrock.Client, error) {
	cfg, err := LoadAWSConfig(ctx, region, profile, static)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return bedrock.NewFromConfig(cfg, func(o *bedrock.Options) {
		if endpointURL != nil && *endpointURL != "" {
			o.BaseEndpoint = aws.String(*endpointURL)
		}
	}), nil
}
