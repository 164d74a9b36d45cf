// Package gcs publishes year files to a Google Cloud Storage bucket.
//
// Objects are laid out per magazine and year below an optional prefix,
// e.g. corpus/spiegel/1980/spiegel-1980.json, and carry the magazine, year
// and producing run as custom metadata.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
)

// cacheControl keeps readers from serving a year file that a later run
// re-sorted or annotated.
const cacheControl = "no-cache"

var yearFileName = regexp.MustCompile(`^([a-z]+)-(\d{4})\.json$`)

// Config names the target bucket.
type Config struct {
	Bucket string
	// Prefix is prepended to every object name.
	Prefix string
	// RunID is stored on every object as "run_id".
	RunID string
}

// Object is where a year file goes and what is stored with it.
type Object struct {
	Name     string
	Metadata map[string]string
}

// BlobStore uploads year files into one bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
	prefix string
	runID  string
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		runID:  cfg.RunID,
	}, nil
}

// Locate maps a year file name such as "stern-2015.json" to its object.
// Names that are not year files land directly below the prefix.
func (s *BlobStore) Locate(fileName string) Object {
	obj := Object{Name: fileName, Metadata: map[string]string{}}
	if m := yearFileName.FindStringSubmatch(strings.ToLower(fileName)); m != nil {
		obj.Name = path.Join(m[1], m[2], fileName)
		obj.Metadata["magazine"] = m[1]
		obj.Metadata["year"] = m[2]
	}
	if s.prefix != "" {
		obj.Name = path.Join(s.prefix, obj.Name)
	}
	if s.runID != "" {
		obj.Metadata["run_id"] = s.runID
	}
	return obj
}

// PutObject uploads one year file and returns its gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, fileName string, contentType string, r io.Reader) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", fmt.Errorf("file name is required")
	}
	obj := s.Locate(fileName)
	writer := s.client.Bucket(s.bucket).Object(obj.Name).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = cacheControl
	writer.Metadata = obj.Metadata
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("upload %s: %w (close writer: %v)", obj.Name, err, closeErr)
		}
		return "", fmt.Errorf("upload %s: %w", obj.Name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish %s: %w", obj.Name, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, obj.Name), nil
}
