// Package assets fetches the images printed on a card.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"librarycard/internal/imaging"
)

// DefaultMaxBytes caps a fetched image.
const DefaultMaxBytes = 8 << 20

var (
	// ErrTooLarge is returned when an asset exceeds the size cap.
	ErrTooLarge = errors.New("assets: image exceeds size limit")
	// ErrHostNotAllowed is returned for a photo URL outside PhotoHosts.
	ErrHostNotAllowed = errors.New("assets: photo host not allowed")
)

// Client resolves photo references to image bytes.
type Client struct {
	HTTP     *http.Client
	MaxBytes int64
	// PhotoHosts restricts remote photos to these hosts and their
	// subdomains. Empty allows any host.
	PhotoHosts []string
}

// New creates a client with a per-request timeout.
func New(timeout time.Duration, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// FetchPhoto returns the bytes behind ref. data: URIs are decoded in place;
// http(s) URLs are downloaded. An empty ref yields nil bytes and no error.
func (c *Client) FetchPhoto(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, nil
	case strings.HasPrefix(ref, "data:"):
		data, err := imaging.DecodeDataURL(ref)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > c.MaxBytes {
			return nil, ErrTooLarge
		}
		return data, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if !c.hostAllowed(ref) {
			return nil, fmt.Errorf("%w: %.64q", ErrHostNotAllowed, ref)
		}
		return c.Fetch(ctx, ref)
	default:
		return nil, fmt.Errorf("assets: unsupported photo reference %.16q", ref)
	}
}

func (c *Client) hostAllowed(ref string) bool {
	if len(c.PhotoHosts) == 0 {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return HostAllowed(u.Hostname(), c.PhotoHosts)
}

// HostAllowed reports whether host equals one of hosts or is a subdomain of one.
func HostAllowed(host string, hosts []string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return true
		}
	}
	return false
}

// Fetch downloads url.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("assets: fetch %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("assets: read body: %w", err)
	}
	if int64(len(data)) > c.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Health checks that url is reachable.
func (c *Client) Health(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("assets: %s unavailable: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("assets: %s unhealthy: %s", url, resp.Status)
	}
	return nil
}
