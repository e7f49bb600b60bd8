// Package objectstore implements backend.ObjectStorage against the storage
// service's S3-compatible endpoint.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	// Endpoint is the S3 protocol endpoint, e.g. http://127.0.0.1:54321/storage/v1/s3.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is the project URL public object links are built from.
	PublicBaseURL string
}

type S3Storage struct {
	client     putter
	publicBase string
}

var _ backend.ObjectStorage = (*S3Storage)(nil)

func New(ctx context.Context, c Config) (*S3Storage, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true
	})

	return newWithClient(client, c.PublicBaseURL), nil
}

func newWithClient(p putter, publicBase string) *S3Storage {
	return &S3Storage{client: p, publicBase: strings.TrimRight(publicBase, "/")}
}

// Upload stores data at bucket/name. Without opts.Upsert an existing object
// is left untouched and ErrConflict is returned.
func (s *S3Storage) Upload(ctx context.Context, bucket, name string, data []byte, opts backend.UploadOptions) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if !opts.Upsert {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, name, mapError(err))
	}
	return nil
}

func (s *S3Storage) PublicURL(bucket, name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBase + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + strings.Join(parts, "/")
}

func mapError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", backend.ErrUnavailable, err)
	}

	out := &backend.APIError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage()}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		out.Status = respErr.HTTPStatusCode()
	}

	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict", "Duplicate", "ResourceAlreadyExists":
		out.Kind = backend.ErrConflict
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Unauthorized", "ExpiredToken":
		out.Kind = backend.ErrUnauthorized
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		out.Kind = backend.ErrNotFound
	case "EntityTooLarge", "InvalidRequest", "InvalidArgument", "InvalidMimeType":
		out.Kind = backend.ErrValidation
	default:
		out.Kind = backend.KindForStatus(out.Status)
		if out.Kind == nil {
			out.Kind = backend.ErrUnavailable
		}
	}
	if out.Message == "" {
		out.Message = apiErr.ErrorCode()
	}
	return out
}
