package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignPhotoUpload generates a presigned PUT URL for uploading a product
// photo directly to S3. The caller stores the returned object key as the
// product's photo reference.
func PresignPhotoUpload(ctx context.Context, cfg sdkaws.Config, bucket, key, contentType string, expiry time.Duration) (string, error) {
	client := s3.NewFromConfig(cfg)
	presigner := s3.NewPresignClient(client)

	input := &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: sdkaws.String(contentType),
	}

	presigned, err := presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign photo upload: %w", err)
	}
	return presigned.URL, nil
}
