package helpers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadFileSurfacesClientBuildError(t *testing.T) {
	// Consume the once so the real builder never runs, then pin a failure.
	s3Once.Do(func() {})
	s3Client = nil
	s3Err = errors.New("failed to resolve credentials")

	err := UploadFileToS3(context.Background(), "bucket", "users/photo.jpeg", nil)

	assert.ErrorIs(t, err, s3Err)
}
