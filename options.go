package objfs

import (
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/jmgilman/objfs/cache"
	"github.com/jmgilman/objfs/errors"
)

const (
	// DefaultChunkSize is the read size used when streaming content to disk.
	DefaultChunkSize = 8192

	// DefaultFolderConcurrency processes folder trees sequentially.
	DefaultFolderConcurrency = 1
)

// Options configures a Driver. The zero value is usable.
type Options struct {
	// Cache stores metadata records and listings. Default: in-memory store.
	Cache cache.Store

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// LogConfig controls the driver log level and cache-operation logging.
	LogConfig *cache.LogConfig

	// Registerer receives the driver metrics. Nil registers nothing.
	Registerer prometheus.Registerer

	// PublicBaseURL, when set, is the prefix of every public URL.
	// A leading http:// or https:// is stripped; Secure picks the scheme.
	PublicBaseURL string

	// Secure selects https for public URLs and SSL CDN URLs.
	Secure bool

	// StorageID tags every listing item and file info record.
	StorageID string

	// VerifyChecksums computes MD5 digests from content instead of
	// trusting the backend ETag.
	VerifyChecksums bool

	// ImplicitFolders reports folders that only exist through their
	// descendants' keys.
	ImplicitFolders bool

	// TempDir receives local copies. Default: os.TempDir().
	TempDir string

	// FolderConcurrency bounds parallel object operations while moving or
	// copying a folder tree. Default: 1
	FolderConcurrency int

	// ChunkSize is the read size for streaming transfers. Default: 8192
	ChunkSize int

	// CreateContainer creates the container on construction when the
	// backend supports it.
	CreateContainer bool

	// Locale is the BCP 47 tag used to collate listings. Default: root locale.
	Locale string
}

// normalize applies defaults and validates the options.
func (o *Options) normalize() error {
	if o.FolderConcurrency < 0 || o.ChunkSize < 0 {
		return errors.New(errors.CodeInvalidConfig, "folder concurrency and chunk size must not be negative")
	}
	if o.FolderConcurrency == 0 {
		o.FolderConcurrency = DefaultFolderConcurrency
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}

	base := strings.TrimSpace(o.PublicBaseURL)
	base = strings.TrimPrefix(base, "https://")
	base = strings.TrimPrefix(base, "http://")
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	o.PublicBaseURL = base

	if o.Locale != "" {
		if _, err := language.Parse(o.Locale); err != nil {
			return errors.WithContext(
				errors.Wrapf(err, errors.CodeInvalidConfig, "invalid locale %q", o.Locale),
				"locale", o.Locale,
			)
		}
	}
	return nil
}

// tag returns the collation language.
func (o *Options) tag() language.Tag {
	if o.Locale == "" {
		return language.Und
	}
	return language.MustParse(o.Locale)
}

// logger builds the driver logger.
func (o *Options) logger() *cache.Logger {
	if o.Logger == nil {
		return cache.NewNopLogger()
	}
	cfg := cache.DefaultLogConfig()
	if o.LogConfig != nil {
		cfg = *o.LogConfig
	}
	return cache.FromSlog(o.Logger, cfg)
}
