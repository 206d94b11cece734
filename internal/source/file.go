package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/starford/hoursheet/internal/apperr"
)

// File reads a data source from the local file system.
type File struct {
	maxBytes int64
}

// NewFile creates a File fetcher. maxBytes <= 0 applies the default cap.
func NewFile(maxBytes int64) *File {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &File{maxBytes: maxBytes}
}

// Fetch reads the file at location (a path or file:// URL). A missing or
// unreadable file is reported as a NetworkError, the same kind as a
// failed remote retrieval.
func (f *File) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: err}
	}
	path, err := filepath.Abs(LocalPath(location))
	if err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: fmt.Errorf("resolve path: %w", err)}
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: err}
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: err}
	}
	if info.IsDir() {
		return nil, &apperr.NetworkError{URL: location, Err: fmt.Errorf("%s is a directory", path)}
	}

	data, err := io.ReadAll(io.LimitReader(fh, f.maxBytes+1))
	if err != nil {
		return nil, &apperr.NetworkError{URL: location, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &apperr.NetworkError{URL: location, Err: errors.New("file exceeds size limit")}
	}
	return data, nil
}
