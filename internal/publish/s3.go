// Package publish uploads an export to object storage.
package publish

import (
	"bytes"
	"context"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vango-export/internal/errors"
	"github.com/vango-dev/vango-export/internal/export"
)

// PutObjectAPI is the part of *s3.Client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink writes exported files to an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	sink := publish.NewS3Sink(s3.NewFromConfig(cfg), "my-site", "preview/")
//	exp := export.New(client, export.Options{Publish: []export.Sink{sink}})
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

var _ export.Sink = (*S3Sink)(nil)

// NewS3Sink creates a sink that stores files under prefix in bucket.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an exported file name.
func (s *S3Sink) Key(name string) string {
	return s.prefix + strings.TrimPrefix(name, "/")
}

// WriteFile uploads data as name.
func (s *S3Sink) WriteFile(ctx context.Context, name string, data []byte) error {
	key := s.Key(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType(name)),
	})
	if err != nil {
		return errors.New("E206").
			WithPathname("s3://" + s.bucket + "/" + key).
			Wrap(err)
	}
	return nil
}

// ContentType returns the MIME type for an exported file name.
func ContentType(name string) string {
	switch ext := path.Ext(name); ext {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
