package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/types"
	"github.com/sourcegraph/conc/pool"

	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/sdk"
)

const (
	DefaultConcurrency = 4
	DefaultRetries     = 3
)

// OCICatalog is a Catalog backed by an OCI registry repository.
type OCICatalog struct {
	repo        name.Repository
	auth        Authenticator
	concurrency int
	retries     int
	level       int
	tempDir     string
	logger      *slog.Logger
}

// Option configures an OCICatalog.
type Option func(*OCICatalog)

// WithAuth sets explicit registry credentials.
func WithAuth(auth Authenticator) Option {
	return func(c *OCICatalog) { c.auth = auth }
}

// WithConcurrency sets the number of parallel registry requests.
func WithConcurrency(n int) Option {
	return func(c *OCICatalog) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRetries sets how many attempts are made when the registry is unreachable.
func WithRetries(n int) Option {
	return func(c *OCICatalog) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithCompressionLevel sets the zstd level (1..3) used by Publish.
func WithCompressionLevel(level int) Option {
	return func(c *OCICatalog) { c.level = level }
}

// WithTempDir sets where Publish stages compressed layers.
func WithTempDir(dir string) Option {
	return func(c *OCICatalog) { c.tempDir = dir }
}

// WithLogger sets the logger for registry operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *OCICatalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewOCICatalog creates a catalog for a repository reference such as
// "ghcr.io/acme/memdbs". insecure allows plain HTTP registries.
func NewOCICatalog(repository string, insecure bool, opts ...Option) (*OCICatalog, error) {
	var nameOpts []name.Option
	if insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}
	repo, err := name.NewRepository(repository, nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid repository %q: %w", repository, err)
	}

	c := &OCICatalog{
		repo:        repo,
		concurrency: DefaultConcurrency,
		retries:     DefaultRetries,
		level:       2,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *OCICatalog) String() string { return c.repo.String() }

func (c *OCICatalog) options(ctx context.Context) []remote.Option {
	return []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuth(c.authenticator()),
		remote.WithJobs(c.concurrency),
		// retries are driven by retry() so offline detection stays bounded
		remote.WithRetryBackoff(remote.Backoff{Duration: time.Second, Factor: 1, Steps: 1}),
	}
}

type listed struct {
	entry sdk.Remote
	ok    bool
}

// List implements Catalog. A repository that does not exist yet is an empty
// catalog.
func (c *OCICatalog) List(ctx context.Context) ([]sdk.Remote, error) {
	tags, err := retry(ctx, c.retries, func() ([]string, error) {
		return remote.List(c.repo, c.options(ctx)...)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", c.repo, Unavailable(err))
	}

	p := pool.NewWithResults[listed]().
		WithMaxGoroutines(c.concurrency).
		WithContext(ctx).
		WithCancelOnError()

	for _, tag := range tags {
		p.Go(func(ctx context.Context) (listed, error) {
			return c.describe(ctx, tag)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	entries := make([]sdk.Remote, 0, len(results))
	for _, r := range results {
		if r.ok {
			entries = append(entries, r.entry)
		}
	}
	slices.SortFunc(entries, func(a, b sdk.Remote) int { return sdk.Compare(a.Info, b.Info) })

	c.logger.Debug("listed catalog", "repository", c.repo.String(), "tags", len(tags), "sdks", len(entries))
	return entries, nil
}

// describe reads the manifest behind tag. Tags that are not databases are
// reported with ok == false.
func (c *OCICatalog) describe(ctx context.Context, tag string) (listed, error) {
	desc, err := retry(ctx, c.retries, func() (*remote.Descriptor, error) {
		return remote.Get(c.repo.Tag(tag), c.options(ctx)...)
	})
	if err != nil {
		return listed{}, fmt.Errorf("get manifest %s:%s: %w", c.repo, tag, Unavailable(err))
	}

	m, err := v1.ParseManifest(bytes.NewReader(desc.Manifest))
	if err != nil {
		c.logger.Debug("skipping tag with unreadable manifest", "tag", tag, "error", err)
		return listed{}, nil
	}

	id := m.Annotations[AnnotationSDK]
	if id == "" || len(m.Layers) != 1 {
		c.logger.Debug("skipping tag without sdk annotation", "tag", tag)
		return listed{}, nil
	}
	info, err := sdk.Parse(id)
	if err != nil {
		c.logger.Debug("skipping tag with invalid sdk annotation", "tag", tag, "sdk", id)
		return listed{}, nil
	}

	layer := m.Layers[0]
	return listed{
		entry: sdk.NewRemote(info, uint64(layer.Size), layer.Digest.String()),
		ok:    true,
	}, nil
}

// Open implements Catalog.
func (c *OCICatalog) Open(ctx context.Context, entry sdk.Remote) (io.ReadCloser, error) {
	layer, err := remote.Layer(c.repo.Digest(entry.ETag), c.options(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("fetch layer %s: %w", entry.Info, Unavailable(err))
	}
	rc, err := layer.Compressed()
	if err != nil {
		return nil, fmt.Errorf("read layer %s: %w", entry.Info, Unavailable(err))
	}
	return rc, nil
}

// Publish pushes the database file at path and returns its catalog entry.
func (c *OCICatalog) Publish(ctx context.Context, path string) (sdk.Remote, error) {
	db, err := memdb.Open(path)
	if err != nil {
		return sdk.Remote{}, err
	}
	info := db.Info()
	if err := db.Close(); err != nil {
		return sdk.Remote{}, fmt.Errorf("close %s: %w", path, err)
	}

	if _, err := name.NewTag(c.repo.String() + ":" + info.ID()); err != nil {
		return sdk.Remote{}, fmt.Errorf("tag for %s: %w", info, err)
	}
	tag := c.repo.Tag(info.ID())

	tempDir := c.tempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	layer, err := newFileLayer(path, tempDir, c.level)
	if err != nil {
		return sdk.Remote{}, err
	}
	defer func() { _ = layer.Remove() }()

	img, err := c.buildImage(layer, info)
	if err != nil {
		return sdk.Remote{}, fmt.Errorf("build image: %w", err)
	}

	c.logger.Info("publishing", "sdk", info.ID(), "tag", tag.String(), "size", layer.size)
	if _, err := retry(ctx, c.retries, func() (struct{}, error) {
		return struct{}{}, remote.Write(tag, img, c.options(ctx)...)
	}); err != nil {
		return sdk.Remote{}, fmt.Errorf("push %s: %w", info, Unavailable(err))
	}

	return sdk.NewRemote(info, uint64(layer.size), layer.digest.String()), nil
}

func (c *OCICatalog) buildImage(layer v1.Layer, info sdk.Info) (v1.Image, error) {
	img := mutate.MediaType(empty.Image, types.OCIManifestSchema1)
	img = mutate.ConfigMediaType(img, types.OCIConfigJSON)

	img, err := mutate.AppendLayers(img, layer)
	if err != nil {
		return nil, err
	}

	return mutate.Annotations(img, map[string]string{
		AnnotationSDK:      info.ID(),
		AnnotationFilename: info.Filename(),
	}).(v1.Image), nil
}

// retry runs fn until it succeeds, fails with an error that is not an
// availability problem, or maxAttempts is reached.
func retry[T any](ctx context.Context, maxAttempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := range maxAttempts {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isUnavailable(err) {
			break
		}
		if i < maxAttempts-1 {
			delay := time.Duration(1<<i) * 500 * time.Millisecond // 500ms, 1s, 2s, 4s...
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return zero, lastErr
}
