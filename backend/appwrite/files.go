package appwrite

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"campusbite/backend"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Files stores uploads in the project's storage bucket.
type Files struct {
	c *Client
}

type fileDoc struct {
	ID       string `json:"$id"`
	BucketID string `json:"bucketId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}

func (f *Files) Upload(ctx context.Context, in backend.FileInput) (*backend.File, error) {
	in, err := backend.PrepareUpload(in)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("fileId", "unique()"); err != nil {
		return nil, &backend.UploadError{Reason: "encoding failed", Err: err}
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(in.Name)+`"`)
	h.Set("Content-Type", in.MimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, &backend.UploadError{Reason: "encoding failed", Err: err}
	}
	if _, err := part.Write(in.Data); err != nil {
		return nil, &backend.UploadError{Reason: "encoding failed", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &backend.UploadError{Reason: "encoding failed", Err: err}
	}

	var doc fileDoc
	path := "/storage/buckets/" + url.PathEscape(f.c.cfg.BucketID) + "/files"
	if err := f.c.send(ctx, http.MethodPost, path, nil, &body, mw.FormDataContentType(), &doc); err != nil {
		return nil, &backend.UploadError{Reason: "storage rejected the file", Err: err}
	}
	return &backend.File{ID: doc.ID, Bucket: doc.BucketID, Name: doc.Name, MimeType: doc.MimeType, Size: doc.Size}, nil
}

func (f *Files) ViewURL(fileID string) string {
	return backend.ViewURL(f.c.cfg.Endpoint, f.c.cfg.BucketID, fileID, f.c.cfg.ProjectID)
}

func (f *Files) Delete(ctx context.Context, fileID string) error {
	path := "/storage/buckets/" + url.PathEscape(f.c.cfg.BucketID) + "/files/" + url.PathEscape(fileID)
	return f.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
