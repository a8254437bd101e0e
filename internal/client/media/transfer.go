package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Transferer moves one body to a presigned URL and returns the storage ETag.
// onSent, when not nil, receives the cumulative number of bytes sent.
type Transferer interface {
	Put(ctx context.Context, url string, body io.Reader, size int64, contentType string, onSent func(int64)) (string, error)
}

// HTTPTransferer PUTs to presigned URLs. Its client must not carry the API
// cookie jar or the CSRF header.
type HTTPTransferer struct {
	Client *http.Client
}

func NewHTTPTransferer() *HTTPTransferer {
	return &HTTPTransferer{Client: &http.Client{}}
}

func (t *HTTPTransferer) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string, onSent func(int64)) (string, error) {
	var rd io.Reader = http.NoBody
	if size > 0 {
		rd = &countingReader{r: body, onSent: onSent}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, rd)
	if err != nil {
		return "", fmt.Errorf("build put request: %w", err)
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	hc := t.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("storage responded %s", resp.Status)
	}
	return resp.Header.Get("ETag"), nil
}

type countingReader struct {
	r      io.Reader
	n      int64
	onSent func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.onSent != nil {
			c.onSent(c.n)
		}
	}
	return n, err
}
