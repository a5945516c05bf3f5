package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const defaultUserAgent = "chromatic/1.0 (compatible; Go)"

var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrBodyTooLarge      = errors.New("response body too large")
)

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// Fetcher retrieves the text of a resource.
type Fetcher interface {
	Fetch(ctx context.Context, u *URL) (string, error)
}

// Options tune a Client. Zero values select the defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// Client fetches http, https, file and data URLs and decodes their bodies to
// UTF-8 text.
type Client struct {
	http         *http.Client
	userAgent    string
	maxBodyBytes int64
	log          *zap.Logger
}

var _ Fetcher = (*Client)(nil)

func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 16 << 20
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: newDecompressingTransport(opts.Transport),
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
		log:          log.Named("fetch"),
	}
}

func (c *Client) Fetch(ctx context.Context, u *URL) (string, error) {
	start := time.Now()
	var (
		body string
		err  error
	)
	switch u.Scheme {
	case "http", "https":
		body, err = c.fetchHTTP(ctx, u)
	case "file":
		body, err = c.fetchFile(u)
	case "data":
		body, err = decodeDataURL(u)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return "", err
	}
	c.log.Debug("Fetched resource",
		zap.Stringer("url", u),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

func (c *Client) fetchHTTP(ctx context.Context, u *URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: u.String(), Code: resp.StatusCode}
	}
	return c.decode(resp.Body, resp.Header.Get("Content-Type"))
}

func (c *Client) fetchFile(u *URL) (string, error) {
	f, err := os.Open(filepath.FromSlash(u.Path))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", u.Path, err)
	}
	defer f.Close()
	return c.decode(f, mime.TypeByExtension(filepath.Ext(u.Path)))
}

// decode reads at most maxBodyBytes and converts the text to UTF-8 using the
// content type, a byte order mark or a <meta> charset declaration.
func (c *Client) decode(r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return "", ErrBodyTooLarge
	}
	return toUTF8(data, contentType)
}

func toUTF8(data []byte, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}
	text, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}
	return string(text), nil
}

// decodeDataURL handles "data:[<mediatype>][;base64],<data>".
func decodeDataURL(u *URL) (string, error) {
	meta, payload, ok := strings.Cut(u.Path, ",")
	if !ok {
		return "", fmt.Errorf("%w: data URL without comma", ErrMalformedURL)
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			unescaped = payload
		}
		data = []byte(unescaped)
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	return toUTF8(data, mediaType)
}
