package s3

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("InvalidSSE", func(t *testing.T) {
		_, err := New(Config{Bucket: "b", EnableSSE: true, SSEAlgorithm: "rot13"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid SSE")
	})

	t.Run("StaticCredentials", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "vault-media",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
		assert.Equal(t, "https://vault-media.s3.us-east-1.amazonaws.com/images/abc/x.png", backend.PublicURL("images/abc/x.png"))
	})
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{"aws default", Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com"},
		{"explicit", Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{"minio path style", Config{Bucket: "b", Endpoint: "http://localhost:9000", UsePathStyle: true}, "http://localhost:9000/b"},
		{"virtual host endpoint", Config{Bucket: "b", Endpoint: "https://storage.example.com"}, "https://b.storage.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PublicBaseURL(tt.config))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NoSuchBucket"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(fmt.Errorf("network down")))

	assert.True(t, hasCode(&smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, "BucketAlreadyExists", "BucketAlreadyOwnedByYou"))
}
