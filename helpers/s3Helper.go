package helpers

import (
	"context"
	"mime/multipart"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	s3Client *s3.Client
	s3Err    error
	s3Once   sync.Once
)

// GetS3Client lazily builds the client for the S3-compatible photo bucket. A
// failed build is remembered and returned to every caller.
func GetS3Client() (*s3.Client, error) {
	s3Once.Do(func() {
		key := os.Getenv("SPACES_KEY")
		secret := os.Getenv("SPACES_SECRET")
		region := os.Getenv("SPACES_REGION")
		if region == "" {
			region = "us-east-1"
		}

		cfg, err := config.LoadDefaultConfig(context.Background(),
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		)
		if err != nil {
			s3Err = err
			return
		}

		endpoint := os.Getenv("SPACES_ENDPOINT")
		s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
	})
	return s3Client, s3Err
}

// UploadFileToS3 stores a profile photo under the given key and makes it
// publicly readable.
func UploadFileToS3(ctx context.Context, bucket string, key string, file multipart.File) error {
	client, err := GetS3Client()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    "public-read",
	})
	return err
}
