package backend

import (
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest file the storage bucket accepts.
const MaxUploadSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true}

var allowedMIME = []string{"image/jpeg", "image/png", "image/gif"}

type FileInput struct {
	Name     string
	Data     []byte
	MimeType string // filled by PrepareUpload
}

type File struct {
	ID       string `json:"id"`
	Bucket   string `json:"bucket"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// UploadError reports a rejected or failed file upload.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file upload failed: %s: %v", e.Reason, e.Err)
	}
	return "file upload failed: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

// PrepareUpload validates an upload and normalizes its name. A missing or
// unknown extension is replaced with .jpg; the content itself must sniff as
// a jpeg, png or gif image.
func PrepareUpload(in FileInput) (FileInput, error) {
	if len(in.Data) == 0 {
		return in, &UploadError{Reason: "file is empty"}
	}
	if len(in.Data) > MaxUploadSize {
		return in, &UploadError{Reason: "file size exceeds 5MB limit"}
	}

	name := path.Base(strings.ReplaceAll(in.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file-" + NewID()
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !allowedExtensions[ext] {
		log.Printf("WARN invalid or missing extension %q on %s, defaulting to .jpg", ext, name)
		name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
	}

	mime := mimetype.Detect(in.Data)
	if !mime.Is(allowedMIME[0]) && !mime.Is(allowedMIME[1]) && !mime.Is(allowedMIME[2]) {
		return in, &UploadError{Reason: "unsupported content type " + mime.String()}
	}

	in.Name = name
	in.MimeType = mime.String()
	return in, nil
}

// ViewURL builds the public view URL of a stored file.
func ViewURL(endpoint, bucket, fileID, project string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		strings.TrimRight(endpoint, "/"), url.PathEscape(bucket), url.PathEscape(fileID), url.QueryEscape(project))
}
