// Package compression provides the zstd stream codec used for catalog transfers.
package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// MediaType is the layer media type of compressed databases in the catalog.
const MediaType = "application/vnd.oci.image.layer.v1.tar+zstd"

// Level maps the configured 1..3 compression level to a zstd encoder level.
func Level(level int) zstd.EncoderLevel {
	switch level {
	case 1:
		return zstd.SpeedFastest
	case 2:
		return zstd.SpeedDefault
	case 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedDefault
	}
}

type decoder struct {
	*zstd.Decoder
}

// Close releases the decoder. It never fails.
func (d decoder) Close() error {
	d.Decoder.Close()
	return nil
}

// NewReader returns a reader yielding the decompressed content of r.
// The caller still owns r and must close it separately.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, err
	}
	return decoder{d}, nil
}

// NewWriter returns a writer compressing into w. Close flushes the frame
// but does not close w.
func NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(Level(level)),
		zstd.WithEncoderConcurrency(1),
	)
}

// Decompress copies the decompressed content of src into dst.
func Decompress(dst io.Writer, src io.Reader) (int64, error) {
	r, err := NewReader(src)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return io.Copy(dst, r)
}

// Compress copies src into dst as a single zstd stream.
func Compress(dst io.Writer, src io.Reader, level int) (int64, error) {
	w, err := NewWriter(dst, level)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return n, err
	}
	return n, w.Close()
}
