package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"validator/pkg/serrors"
)

// maxRedirects mirrors net/http's default redirect limit.
const maxRedirects = 10

var (
	// ErrBodyTooLarge is wrapped into fetch errors when a response body
	// exceeds Options.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrInsecureRedirect is returned when a redirect would downgrade https to http.
	ErrInsecureRedirect = errors.New("redirect from https to http refused")
)

// Options configure a Client.
type Options struct {
	// Timeout bounds a whole Get call, including reading the body. Zero
	// disables the per-call timeout.
	Timeout time.Duration
	// MaxBodyBytes caps the response body size. Zero disables the cap.
	MaxBodyBytes int64
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Client fetches remote resources and fulfills the Fetcher interface. It is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	options    Options
}

// NewHTTPClient builds the *http.Client used in production. It negotiates at
// least TLS 1.2 for https URLs and re-checks every redirect target: only
// http and https are followed, and an https origin never redirects to plain
// http.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint: forcetypeassert
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: CheckRedirect,
	}
}

// CheckRedirect is an http.Client.CheckRedirect policy applying the same
// scheme rules to redirect targets as to the original request.
func CheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if err := checkScheme(req.URL); err != nil {
		return err
	}
	if len(via) > 0 && via[len(via)-1].URL.Scheme == "https" && req.URL.Scheme == "http" {
		return ErrInsecureRedirect
	}

	return nil
}

func checkScheme(u *url.URL) error {
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

// Get fetches rawURL and returns its body. The request is encrypted for
// https URLs and cleartext for http URLs; any other scheme is rejected as a
// bad request. Network failures, timeouts, non-2xx statuses and oversized
// bodies are reported with the serrors.ErrFetch kind.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid URL")
	}
	if err := checkScheme(u); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid URL")
	}
	if u.Host == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid URL: missing host")
	}

	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if c.options.UserAgent != "" {
		req.Header.Set("User-Agent", c.options.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrFetch, err, "could not fetch %s", rawURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// the final hop decides: a redirect may legitimately land on another https host.
	if resp.Request != nil && resp.Request.URL.Scheme == "https" && resp.TLS == nil {
		return nil, serrors.With(serrors.ErrFetch, "could not fetch %s: response not received over TLS", rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serrors.With(serrors.ErrFetch, "could not fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrFetch, err, "could not read %s", rawURL)
	}

	return body, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.options.MaxBodyBytes <= 0 {
		return io.ReadAll(r) //nolint: wrapcheck
	}

	// one extra byte tells "exactly at the limit" apart from "over it".
	b, err := io.ReadAll(io.LimitReader(r, c.options.MaxBodyBytes+1))
	if err != nil {
		return nil, err //nolint: wrapcheck
	}
	if int64(len(b)) > c.options.MaxBodyBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, c.options.MaxBodyBytes)
	}

	return b, nil
}

// Ensure Client conforms to the Fetcher interface at compile time.
var _ Fetcher = (*Client)(nil)

// New constructs a Client performing requests with httpClient.
func New(httpClient *http.Client, options Options) *Client {
	return &Client{
		httpClient: httpClient,
		options:    options,
	}
}
