package objfs

import (
	"context"
	"crypto/md5"  //nolint:gosec // content digests requested by callers
	"crypto/sha1" //nolint:gosec // content digests requested by callers
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// Supported hash algorithms.
const (
	HashMD5  = "md5"
	HashSHA1 = "sha1"
)

// SupportedHashAlgorithms returns the algorithms accepted by Hash.
func SupportedHashAlgorithms() []string {
	return []string{HashMD5, HashSHA1}
}

// Hash returns the hex digest of the content of id. MD5 is taken from the
// backend ETag unless VerifyChecksums is set or no ETag is known.
// Returns a CodeInvalidInput error for unsupported algorithms and a
// CodeNotFound error if id does not exist.
func (d *Driver) Hash(ctx context.Context, id, algorithm string) (string, error) {
	id = pathutil.Normalize(id)

	var h hash.Hash
	switch strings.ToLower(algorithm) {
	case HashMD5:
		h = md5.New() //nolint:gosec // content digests requested by callers
	case HashSHA1:
		h = sha1.New() //nolint:gosec // content digests requested by callers
	default:
		return "", errors.WithContextMap(
			errors.Newf(errors.CodeInvalidInput, "hash algorithm %q is not supported", algorithm),
			map[string]interface{}{"identifier": id, "algorithm": algorithm},
		)
	}

	if strings.EqualFold(algorithm, HashMD5) && !d.opts.VerifyChecksums {
		obj, found, err := d.Fetch(ctx, id, ModeMetadata)
		if err != nil {
			return "", err
		}
		if !found {
			return "", notFound("hash", id)
		}
		// Multipart ETags ("<hex>-<parts>") are not content digests.
		if etag := strings.Trim(obj.ETag, `"`); etag != "" && !strings.Contains(etag, "-") {
			return strings.ToLower(etag), nil
		}
	}

	_, rc, err := d.backend.GetObject(ctx, id)
	if errs.IsNotExist(err) {
		return "", notFound("hash", id)
	}
	if err != nil {
		return "", errs.Backend(err, "hash", id)
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(h, rc); err != nil {
		return "", errors.WithContext(errors.Wrapf(err, errors.CodeHashFailed, "hash %s", id), "identifier", id)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
