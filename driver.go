package objfs

import (
	"context"
	"crypto/sha1" //nolint:gosec // identifier hashes, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jmgilman/objfs/cache"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
	"github.com/jmgilman/objfs/internal/types"
)

// RootFolder is the identifier of the root folder. It is also the default
// folder.
const RootFolder = pathutil.Root

type (
	// Item is a projected listing entry.
	Item = types.Item

	// FileInfo describes a single object.
	FileInfo = types.Info

	// Permissions are the access rights reported for an identifier.
	Permissions = types.Permissions
)

// Capabilities describes what a storage built on the driver offers.
type Capabilities struct {
	Browsable bool `json:"browsable" yaml:"browsable"`
	Writable  bool `json:"writable" yaml:"writable"`
	Public    bool `json:"public" yaml:"public"`
}

// Driver emulates a hierarchical filesystem over a flat object store.
// It is safe for concurrent use when its backend and cache store are.
type Driver struct {
	backend core.Backend
	raw     core.Backend
	cache   *cache.Cache
	log     *cache.Logger
	opts    Options
	caps    Capabilities
}

// New creates a Driver on backend.
// Returns error if the options are invalid or the container cannot be
// ensured.
func New(ctx context.Context, backend core.Backend, opts Options) (*Driver, error) {
	if backend == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "backend is required")
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	log := opts.logger()
	c := cache.New(opts.Cache, cache.Options{
		Logger:  log,
		Metrics: cache.NewMetrics(opts.Registerer),
	})

	d := &Driver{
		backend: &instrumented{next: backend, metrics: NewMetrics(opts.Registerer), log: log},
		raw:     backend,
		cache:   c,
		log:     log.With("container", backend.Container()),
		opts:    opts,
		caps:    Capabilities{Browsable: true, Writable: true},
	}

	if opts.CreateContainer {
		if err := d.EnsureContainer(ctx); err != nil {
			return nil, err
		}
	}

	d.caps.Public = opts.PublicBaseURL != ""
	if ub, ok := backend.(core.URLBackend); ok && !d.caps.Public {
		base, err := ub.ContainerCDNURL(ctx, opts.Secure)
		if err != nil {
			d.log.Warn(ctx, "could not resolve container CDN status", "error", err)
		}
		d.caps.Public = base != ""
	}

	return d, nil
}

// Backend returns the backend the driver was created with.
func (d *Driver) Backend() core.Backend {
	return d.raw
}

// StorageID returns the storage identifier stamped on records.
func (d *Driver) StorageID() string {
	return d.opts.StorageID
}

// Capabilities returns the capabilities resolved at construction.
func (d *Driver) Capabilities() Capabilities {
	return d.caps
}

// RootFolder returns the identifier of the root folder.
func (d *Driver) RootFolder() string {
	return RootFolder
}

// DefaultFolder returns the folder new files go to by default.
func (d *Driver) DefaultFolder() string {
	return RootFolder
}

// FolderInFolder returns the identifier of folder name inside parent.
func (d *Driver) FolderInFolder(name, parent string) string {
	return pathutil.JoinFolder(parent, name)
}

// FolderIdentifierForFile returns the folder containing id.
func (d *Driver) FolderIdentifierForFile(id string) string {
	return pathutil.FolderIdentifierForFile(pathutil.Normalize(id))
}

// SanitizeFileName replaces characters not allowed in file names.
func (d *Driver) SanitizeFileName(name string) (string, error) {
	return pathutil.SanitizeFileName(name)
}

// Permissions reports the access rights on id. Object stores grant the
// container's rights to every key, so this is always read and write.
func (d *Driver) Permissions(_ context.Context, _ string) Permissions {
	return Permissions{Read: true, Write: true}
}

// EnsureContainer creates the container when the backend supports it.
func (d *Driver) EnsureContainer(ctx context.Context) error {
	ce, ok := d.raw.(core.ContainerEnsurer)
	if !ok {
		return nil
	}
	if err := ce.EnsureContainer(ctx); err != nil {
		return errs.Backend(err, "ensure container", d.raw.Container())
	}
	return nil
}

// FlushCache drops every cached record and listing.
func (d *Driver) FlushCache(ctx context.Context) error {
	return d.cache.Flush(ctx)
}

// invalidate removes every cached view of id. Failures are reported to the
// caller since a surviving entry would be served stale.
func (d *Driver) invalidate(ctx context.Context, id string) error {
	if err := d.cache.Invalidate(ctx, id); err != nil {
		return errors.WithContext(err, "identifier", id)
	}
	return nil
}

func (d *Driver) invalidateListings(ctx context.Context, id string) error {
	if err := d.cache.InvalidateListings(ctx, id); err != nil {
		return errors.WithContext(err, "identifier", id)
	}
	return nil
}

// folderID returns the canonical identifier of a folder.
func folderID(id string) string {
	id = pathutil.Normalize(id)
	if pathutil.IsRoot(id) {
		return RootFolder
	}
	return strings.TrimRight(id, pathutil.Separator) + pathutil.Separator
}

// notFound reports that an object required by op does not exist.
func notFound(op, id string) error {
	return errors.WithContext(
		errors.Wrapf(core.ErrNotExist, errors.CodeNotFound, "%s: %s", op, id),
		"identifier", id,
	)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec // identifier hashes, not a security boundary
	return hex.EncodeToString(sum[:])
}

func (d *Driver) String() string {
	return fmt.Sprintf("objfs(%s)", d.raw.Container())
}
