// Package remote implements the catalog of published symbol databases.
//
// The catalog is an OCI repository: every database is an image tagged with
// its identifier whose single layer is the zstd compressed database file.
// Manifest annotations carry the identifier so listing never needs to touch
// layer blobs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"github.com/aweris/symstash/internal/sdk"
)

const (
	AnnotationSDK      = "dev.symstash.sdk"
	AnnotationFilename = "dev.symstash.filename"
)

// ErrUnavailable marks a catalog that cannot be reached right now.
var ErrUnavailable = errors.New("symstash: remote catalog unavailable")

// Catalog lists published databases and streams their content.
type Catalog interface {
	// List returns every published entry. Errors wrapping ErrUnavailable
	// mean the catalog is offline.
	List(ctx context.Context) ([]sdk.Remote, error)

	// Open returns the compressed content of entry.
	Open(ctx context.Context, entry sdk.Remote) (io.ReadCloser, error)
}

// Unavailable wraps err with ErrUnavailable when it indicates that the
// catalog could not be reached (network failures, timeouts, 5xx, 429).
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) || !isUnavailable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func isUnavailable(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.StatusCode >= http.StatusInternalServerError ||
			terr.StatusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isNotFound(err error) bool {
	var terr *transport.Error
	return errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound
}
