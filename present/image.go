package present

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ImageChecker decides whether an attachment reference can be shown inline.
type ImageChecker interface {
	IsImage(ctx context.Context, ref string) bool
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".svg":  {},
}

// ExtensionChecker accepts absolute http(s) URLs whose path ends in a known
// image extension. It never performs I/O.
type ExtensionChecker struct{}

// IsImage implements ImageChecker.
func (ExtensionChecker) IsImage(_ context.Context, ref string) bool {
	u, ok := parseWebURL(ref)
	if !ok {
		return false
	}
	_, ok = imageExtensions[strings.ToLower(path.Ext(u.Path))]
	return ok
}

// ProbeChecker falls back to a HEAD request for web URLs without an image
// extension (Drive links, CDN ids) and accepts them when the server answers
// with an image/* content type.
type ProbeChecker struct {
	client  *http.Client
	timeout time.Duration
}

// NewProbeChecker builds a ProbeChecker. A nil client uses http.DefaultClient.
func NewProbeChecker(client *http.Client, timeout time.Duration) *ProbeChecker {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ProbeChecker{client: client, timeout: timeout}
}

// IsImage implements ImageChecker.
func (p *ProbeChecker) IsImage(ctx context.Context, ref string) bool {
	if (ExtensionChecker{}).IsImage(ctx, ref) {
		return true
	}
	u, ok := parseWebURL(ref)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	return strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "image/")
}

func parseWebURL(ref string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	default:
		return nil, false
	}
}
