package objfs

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// TempURLExpiry is the lifetime of signed URLs handed out by PublicURL.
const TempURLExpiry = 30 * time.Second

// PublicURL returns a URL for reading id. Candidates are tried in order:
// the configured public base URL, the object's CDN URL, the container's CDN
// base URL and finally a short-lived signed URL. An empty string means no
// public URL is available.
func (d *Driver) PublicURL(ctx context.Context, id string) (string, error) {
	id = pathutil.Normalize(id)
	if d.opts.PublicBaseURL != "" {
		return d.scheme() + d.opts.PublicBaseURL + id, nil
	}

	ub, ok := d.raw.(core.URLBackend)
	if !ok {
		return "", nil
	}

	_, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return "", err
	}

	if found {
		u, err := ub.ObjectCDNURL(ctx, id, d.opts.Secure)
		if err != nil {
			return "", errs.Backend(err, "public url", id)
		}
		if u != "" {
			return u, nil
		}
	}

	base, err := ub.ContainerCDNURL(ctx, d.opts.Secure)
	if err != nil {
		return "", errs.Backend(err, "public url", id)
	}
	if base != "" {
		return strings.TrimRight(base, "/") + "/" + id, nil
	}

	if !found {
		return "", nil
	}
	u, err := ub.TempURL(ctx, id, http.MethodGet, TempURLExpiry)
	if errs.IsUnsupported(err) {
		return "", nil
	}
	if err != nil {
		return "", errs.Backend(err, "temp url", id)
	}
	return u, nil
}

func (d *Driver) scheme() string {
	if d.opts.Secure {
		return "https://"
	}
	return "http://"
}
