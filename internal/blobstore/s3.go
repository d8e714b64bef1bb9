package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the gateway uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Gateway struct {
	client        S3API
	bucket        string
	publicBaseURL string
}

// NewS3Gateway builds a gateway for bucket. publicBaseURL is the prefix used to build
// retrieval URLs (e.g. a CDN); when empty the virtual-hosted S3 URL for region is used.
func NewS3Gateway(client S3API, bucket, region, publicBaseURL string) *S3Gateway {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Gateway{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (g *S3Gateway) Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (Object, error) {
	key := ObjectKey(folder, fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(g.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(inlineDisposition(fileName)),
	})
	if err != nil {
		return Object{}, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return Object{URL: g.URL(key), Key: key}, nil
}

// inlineDisposition encodes non-ASCII names as RFC 2231 filename*.
func inlineDisposition(fileName string) string {
	if v := mime.FormatMediaType("inline", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "inline"
}

func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("s3 delete: empty key")
	}
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public retrieval URL for key.
func (g *S3Gateway) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return g.publicBaseURL + "/" + strings.Join(parts, "/")
}
