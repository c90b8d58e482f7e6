// Package storage uploads product images and hands back download URLs.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

type FileStore interface {
	// Put stores the file bytes under the given name and returns the
	// public download URL.
	Put(ctx context.Context, name string, r io.Reader) (string, error)

	// Download writes the stored file to w.
	Download(ctx context.Context, id string, w io.Writer) error
}
