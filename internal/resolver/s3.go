package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bme-bharat/communityfeed/internal/models"
)

// S3Resolver presigns media URLs directly against the content bucket instead
// of round-tripping through the backend. Counts and aggregates still come
// from the inner resolver; only URL resolution is local.
type S3Resolver struct {
	presigner *s3.PresignClient
	bucket    string
	ttl       time.Duration
	inner     Resolver
}

// NewS3 builds a presigning resolver using the default AWS credential chain.
func NewS3(ctx context.Context, region, bucket string, ttl time.Duration, inner Resolver) (*S3Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Resolver{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		ttl:       ttl,
		inner:     inner,
	}, nil
}

func (r *S3Resolver) MediaURL(ctx context.Context, contentKey string) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(contentKey),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", contentKey, err)
	}
	return req.URL, nil
}

func (r *S3Resolver) CommentCount(ctx context.Context, postID string) (int, error) {
	return r.inner.CommentCount(ctx, postID)
}

func (r *S3Resolver) ReactionSummary(ctx context.Context, postID string) (*models.ReactionSummary, error) {
	return r.inner.ReactionSummary(ctx, postID)
}

var _ Resolver = (*S3Resolver)(nil)
