// Package fetch implements the remote-fetch collaborator over S3-compatible
// object storage.
package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/edusupport/datafeeder/internal/core/validate"
)

// Locator names either one object (a file) or a key prefix (a folder) in a
// bucket. The canonical string form is s3://bucket/key.
type Locator struct {
	Bucket string
	Key    string
}

// IsFolder reports whether the locator names a key prefix. A trailing slash
// or an empty key means "everything under this prefix".
func (l Locator) IsFolder() bool {
	return l.Key == "" || strings.HasSuffix(l.Key, "/")
}

func (l Locator) String() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// ParseLocator accepts s3://bucket/key locators and virtual-hosted S3 HTTPS
// URLs (https://bucket.s3.region.amazonaws.com/key). Anything else is a
// security error: a malformed locator must be rejected before any network
// I/O happens.
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, validate.NewSecurityError(validate.KindInvalidLocator, "locator must be a non-empty string")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, validate.NewSecurityError(validate.KindInvalidLocator, "cannot parse %q: %v", raw, err)
	}

	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return Locator{}, validate.NewSecurityError(validate.KindInvalidLocator, "missing bucket in %q", raw)
		}
		return Locator{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil

	case "https":
		// Virtual-hosted style: bucket.s3.region.amazonaws.com/key
		host := u.Host
		idx := strings.Index(host, ".s3.")
		if idx <= 0 || !strings.HasSuffix(host, ".amazonaws.com") {
			return Locator{}, validate.NewSecurityError(validate.KindInvalidLocator, "not an S3 URL: %q", raw)
		}
		return Locator{Bucket: host[:idx], Key: strings.TrimPrefix(u.Path, "/")}, nil

	default:
		return Locator{}, validate.NewSecurityError(validate.KindInvalidLocator, "unsupported scheme %q in %q", u.Scheme, raw)
	}
}
