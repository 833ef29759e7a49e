package rom

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// MaxSize bounds how much a single image may decompress to (8 MiB, the
// largest cartridge).
const MaxSize = 8 * 1024 * 1024

var (
	// ErrEmptyArchive indicates an archive with no regular file in it.
	ErrEmptyArchive = errors.New("archive contains no files")

	// ErrImageTooLarge indicates an image larger than MaxSize.
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

// Load reads the image at path. Files ending in .gz, .zip or .7z are
// decompressed; for archives the first regular file is used. Anything else
// is returned as is.
func Load(path string) ([]byte, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip image: %w", err)
		}
		defer gz.Close()
		r = gz
	case ".zip":
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open zip image: %w", err)
		}
		rc, err := openFirst(zr.File)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		r = rc
	case ".7z":
		sr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open 7z image: %w", err)
		}
		rc, err := openFirst7z(sr.File)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		r = rc
	default:
		if len(data) > MaxSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
		}
		return data, nil
	}

	return readLimited(r)
}

func openFirst(files []*zip.File) (io.ReadCloser, error) {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		return rc, nil
	}
	return nil, ErrEmptyArchive
}

func openFirst7z(files []*sevenzip.File) (io.ReadCloser, error) {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		return rc, nil
	}
	return nil, ErrEmptyArchive
}

// readLimited reads r, failing once more than MaxSize bytes arrive.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress image: %w", err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, MaxSize)
	}
	return data, nil
}
