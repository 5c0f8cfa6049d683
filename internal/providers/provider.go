package providers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockRuntimeService is the service name a catalog item asks a
// ClientResolver for.
const BedrockRuntimeService = "bedrock-runtime"

// TextGenerator is the invocable handle a catalog item hands to chat
// orchestration code.
type TextGenerator interface {
	// ModelID returns the model the generator is bound to
	ModelID() string

	// Invoke runs a single completion. params override the generator's
	// model kwargs for this call only.
	Invoke(ctx context.Context, prompt string, params map[string]any) (string, error)
}

// BedrockInvoker abstracts the Bedrock InvokeModel call so generators can be
// tested without AWS.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// ClientRequest describes the client a catalog item needs.
type ClientRequest struct {
	ServiceName string
	Region      string
	EndpointURL *string // overrides the regional endpoint when set
	Profile     *string // shared credentials profile
}

// ClientResolver turns connection settings into an authenticated client.
// Implementations may read local credential configuration but must not call
// the service itself.
type ClientResolver interface {
	ResolveClient(ctx context.Context, req ClientRequest) (BedrockInvoker, error)
}

// ClientResolverFunc adapts a function to ClientResolver.
type ClientResolverFunc func(ctx context.Context, req ClientRequest) (BedrockInvoker, error)

// ResolveClient calls f.
func (f ClientResolverFunc) ResolveClient(ctx context.Context, req ClientRequest) (BedrockInvoker, error) {
	return f(ctx, req)
}
