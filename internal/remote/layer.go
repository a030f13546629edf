package remote

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/types"

	"github.com/aweris/symstash/internal/compression"
)

// fileLayer implements v1.Layer over a zstd compressed copy of a database
// kept in a temporary file, so large databases are never held in memory.
type fileLayer struct {
	path   string
	digest v1.Hash
	diffID v1.Hash
	size   int64
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// newFileLayer compresses src into a temporary file in dir.
func newFileLayer(src, dir string, level int) (_ *fileLayer, err error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".symstash-layer-*")
	if err != nil {
		return nil, fmt.Errorf("create layer file: %w", err)
	}
	defer func() {
		if cerr := tmp.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	compressedHash := sha256.New()
	uncompressedHash := sha256.New()
	counter := &countingWriter{}

	if _, err := compression.Compress(
		io.MultiWriter(tmp, compressedHash, counter),
		io.TeeReader(in, uncompressedHash),
		level,
	); err != nil {
		return nil, fmt.Errorf("compress %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync layer file: %w", err)
	}

	return &fileLayer{
		path:   tmp.Name(),
		digest: v1.Hash{Algorithm: "sha256", Hex: hex.EncodeToString(compressedHash.Sum(nil))},
		diffID: v1.Hash{Algorithm: "sha256", Hex: hex.EncodeToString(uncompressedHash.Sum(nil))},
		size:   counter.n,
	}, nil
}

func (l *fileLayer) Digest() (v1.Hash, error) { return l.digest, nil }
func (l *fileLayer) DiffID() (v1.Hash, error) { return l.diffID, nil }
func (l *fileLayer) Size() (int64, error)     { return l.size, nil }

func (l *fileLayer) MediaType() (types.MediaType, error) {
	return types.MediaType(compression.MediaType), nil
}

func (l *fileLayer) Compressed() (io.ReadCloser, error) {
	return os.Open(l.path)
}

func (l *fileLayer) Uncompressed() (io.ReadCloser, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	r, err := compression.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &decompressedFile{ReadCloser: r, file: f}, nil
}

// Remove deletes the temporary file.
func (l *fileLayer) Remove() error {
	return os.Remove(l.path)
}

type decompressedFile struct {
	io.ReadCloser
	file *os.File
}

func (d *decompressedFile) Close() error {
	_ = d.ReadCloser.Close()
	return d.file.Close()
}
