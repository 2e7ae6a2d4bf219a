package health

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BucketHeader is the subset of the S3 client used for readiness.
type BucketHeader interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Checker verifies the results bucket exists and is reachable.
type S3Checker struct {
	client BucketHeader
	bucket string
}

// NewS3Checker creates a new bucket health checker.
func NewS3Checker(client BucketHeader, bucket string) *S3Checker {
	return &S3Checker{client: client, bucket: bucket}
}

// HealthCheck issues a HeadBucket request.
func (s *S3Checker) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}
