package prompts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	keys    []string
	err     error
}

func (f *fakeBucket) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Store_Get(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"chatbot/prompts/default_chat.yaml": "input_variables: [input]\ntemplate: 'S3 {input}'\n",
	}}
	store := NewS3StoreWithClient(bucket, "prompt-bucket", "chatbot/")

	tmpl, err := store.Get(context.Background(), "prompts/default_chat.yaml")
	require.NoError(t, err)
	assert.Equal(t, "S3 {input}", tmpl.Template)
	assert.Equal(t, []string{"chatbot/prompts/default_chat.yaml"}, bucket.keys)

	_, err = store.Get(context.Background(), "prompts/missing.yaml")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestS3Store_Errors(t *testing.T) {
	cause := errors.New("AccessDenied")
	store := NewS3StoreWithClient(&fakeBucket{err: cause}, "prompt-bucket", "")

	_, err := store.Get(context.Background(), "prompts/default_chat.yaml")
	assert.ErrorIs(t, err, cause)

	_, err = store.Get(context.Background(), "../outside.yaml")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
