package catalog

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"model_catalog/internal/models"
	"model_catalog/internal/providers"
)

type stubInvoker struct{}

func (stubInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return &bedrockruntime.InvokeModelOutput{Body: []byte(`{"results":[{"outputText":"ok"}]}`)}, nil
}

// recordingResolver records every request and returns err when set.
type recordingResolver struct {
	mu       sync.Mutex
	requests []providers.ClientRequest
	err      error
}

func (r *recordingResolver) ResolveClient(ctx context.Context, req providers.ClientRequest) (providers.BedrockInvoker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return stubInvoker{}, nil
}

func (r *recordingResolver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func usEast1() *models.BedrockParameters {
	return &models.BedrockParameters{Region: models.RegionUSEast1}
}
