// FILE: lixenwraith/sinklog/compress/compress.go
// Package compress turns a closed log file into a compressed artifact.
// Output is written to a temporary file and renamed into place; the source is removed only after that succeeds.
package compress

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/lixenwraith/sinklog/logerr"
	"github.com/pierrec/lz4/v4"
)

// Strategy compresses one file
type Strategy interface {
	// Extension is appended to the source name, without the dot
	Extension() string
	// Compress writes src+"."+Extension() and removes src.
	// A missing src is not an error and returns an empty dst.
	Compress(src string) (dst string, err error)
}

// Tags lists the accepted compression tags
var Tags = []string{"gz", "zip", "zst", "lz4", "br"}

// New returns the strategy for tag; "" and "none" return nil
func New(tag string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "none":
		return nil, nil
	case "gz", "gzip":
		return streamStrategy{ext: "gz", wrap: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.DefaultCompression)
		}}, nil
	case "zst", "zstd":
		return streamStrategy{ext: "zst", wrap: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		}}, nil
	case "lz4":
		return streamStrategy{ext: "lz4", wrap: func(w io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(w), nil
		}}, nil
	case "br", "brotli":
		return streamStrategy{ext: "br", wrap: func(w io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
		}}, nil
	case "zip":
		return zipStrategy{}, nil
	default:
		return nil, &logerr.ConfigError{Field: "compression", Value: tag,
			Err: fmt.Errorf("use one of %s or none", strings.Join(Tags, ", "))}
	}
}

// streamStrategy covers single-stream codecs
type streamStrategy struct {
	ext  string
	wrap func(io.Writer) (io.WriteCloser, error)
}

func (s streamStrategy) Extension() string { return s.ext }

func (s streamStrategy) Compress(src string) (string, error) {
	return compressFile(src, s.ext, func(in *os.File, info fs.FileInfo, out io.Writer) error {
		zw, err := s.wrap(out)
		if err != nil {
			return err
		}
		if _, err := io.Copy(zw, in); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
}

// zipStrategy stores the file as the single entry of a zip archive
type zipStrategy struct{}

func (zipStrategy) Extension() string { return "zip" }

func (zipStrategy) Compress(src string) (string, error) {
	return compressFile(src, "zip", func(in *os.File, info fs.FileInfo, out io.Writer) error {
		zw := zip.NewWriter(out)
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, in); err != nil {
			return err
		}
		return zw.Close()
	})
}

// compressFile runs encode from src into a temporary file, renames it to src.ext,
// keeps the source modification time and then removes src
func compressFile(src, ext string, encode func(in *os.File, info fs.FileInfo, out io.Writer) error) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &logerr.CompressionError{Path: src, Format: ext, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", &logerr.CompressionError{Path: src, Format: ext, Err: err}
	}

	dst := src + "." + ext
	tmp := dst + ".tmp"
	fail := func(err error) (string, error) {
		os.Remove(tmp)
		return "", &logerr.CompressionError{Path: src, Format: ext, Err: err}
	}

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fail(err)
	}
	if err := encode(in, info, out); err != nil {
		out.Close()
		return fail(err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fail(err)
	}
	if err := out.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fail(err)
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	in.Close()
	if err := os.Remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Artifact is complete; a leftover source is reported but not rolled back
		return dst, &logerr.CompressionError{Path: src, Format: ext, Err: fmt.Errorf("remove source: %w", err)}
	}
	return dst, nil
}

// Open returns a reader over the decompressed content of path, chosen by its extension.
// Paths without a known compression extension are opened as-is.
func Open(path string) (io.ReadCloser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "zip" {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		if len(zr.File) == 0 {
			zr.Close()
			return nil, fmt.Errorf("empty zip archive %s", path)
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			zr.Close()
			return nil, err
		}
		return &readCloser{Reader: rc, closers: []io.Closer{rc, zr}}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch ext {
	case "gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case "zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc := zr.IOReadCloser()
		return &readCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	case "lz4":
		return &readCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	case "br":
		return &readCloser{Reader: brotli.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
