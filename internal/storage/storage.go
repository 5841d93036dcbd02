// Package storage abstracts where article attachments end up: a local
// uploads directory or an S3 bucket, picked by storage.type.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Location describes where a stored object can be fetched from.
// Exactly one field is set: Path for files served off the local disk,
// URL for objects living behind a public bucket endpoint.
type Location struct {
	Path string
	URL  string
}

type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Locate(name string) Location
}

// New builds the store selected by the config.
func New() (Store, error) {
	switch viper.GetString("storage.type") {
	case "s3":
		return newS3Store()
	default:
		return newLocalStore(viper.GetString("storage.local_dir"))
	}
}

type localStore struct {
	dir string
}

func newLocalStore(dir string) (*localStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory, %w", err)
	}

	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (s *localStore) Locate(name string) Location {
	return Location{Path: filepath.Join(s.dir, name)}
}
