package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"campusbite/backend"
)

// DiskFiles keeps uploaded files in a directory per bucket. View URLs point
// at the server's storage route under PublicEndpoint.
type DiskFiles struct {
	Dir            string
	Bucket         string
	PublicEndpoint string
	Project        string
}

func NewDiskFiles(dir, bucket, publicEndpoint, project string) (*DiskFiles, error) {
	if err := os.MkdirAll(filepath.Join(dir, bucket), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file directory: %w", err)
	}
	return &DiskFiles{Dir: dir, Bucket: bucket, PublicEndpoint: publicEndpoint, Project: project}, nil
}

func (f *DiskFiles) Upload(ctx context.Context, in backend.FileInput) (*backend.File, error) {
	in, err := backend.PrepareUpload(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &backend.UploadError{Reason: "cancelled", Err: err}
	}

	id := backend.NewID()
	target := filepath.Join(f.Dir, f.Bucket, id+strings.ToLower(filepath.Ext(in.Name)))
	if err := os.WriteFile(target, in.Data, 0o644); err != nil {
		return nil, &backend.UploadError{Reason: "write failed", Err: err}
	}
	return &backend.File{
		ID:       id,
		Bucket:   f.Bucket,
		Name:     in.Name,
		MimeType: in.MimeType,
		Size:     int64(len(in.Data)),
	}, nil
}

func (f *DiskFiles) ViewURL(fileID string) string {
	return backend.ViewURL(f.PublicEndpoint, f.Bucket, fileID, f.Project)
}

func (f *DiskFiles) Delete(ctx context.Context, fileID string) error {
	p, err := f.Path(fileID)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Path locates a stored file on disk.
func (f *DiskFiles) Path(fileID string) (string, error) {
	if _, err := backend.ValidateID(fileID, "file"); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(f.Dir, f.Bucket, fileID+".*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", backend.NotFound("file %s not found", fileID)
	}
	return matches[0], nil
}
