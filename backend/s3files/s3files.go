// Package s3files stores uploaded images in an S3 bucket.
package s3files

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"campusbite/backend"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API is the part of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Files struct {
	api       API
	bucket    string
	publicURL string
}

// New loads the default AWS configuration for region. A non-empty endpoint
// selects an S3-compatible service addressed path-style.
func New(ctx context.Context, region, bucket, endpoint, publicURL string) (*Files, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return NewWithAPI(client, bucket, publicURL), nil
}

func NewWithAPI(api API, bucket, publicURL string) *Files {
	return &Files{api: api, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (f *Files) Upload(ctx context.Context, in backend.FileInput) (*backend.File, error) {
	in, err := backend.PrepareUpload(in)
	if err != nil {
		return nil, err
	}
	id := backend.NewID()
	_, err = f.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(f.bucket),
		Key:                aws.String(id),
		Body:               bytes.NewReader(in.Data),
		ContentType:        aws.String(in.MimeType),
		ContentLength:      aws.Int64(int64(len(in.Data))),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", in.Name)),
	})
	if err != nil {
		return nil, &backend.UploadError{Reason: "unable to upload file to S3", Err: err}
	}
	return &backend.File{
		ID:       id,
		Bucket:   f.bucket,
		Name:     in.Name,
		MimeType: in.MimeType,
		Size:     int64(len(in.Data)),
	}, nil
}

func (f *Files) ViewURL(fileID string) string {
	return f.publicURL + "/" + fileID
}

func (f *Files) Delete(ctx context.Context, fileID string) error {
	_, err := f.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file %s from S3: %w", fileID, err)
	}
	return nil
}
