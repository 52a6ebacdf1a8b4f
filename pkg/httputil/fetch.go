package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/fsdcheck/pkg/buildinfo"
	"github.com/matzehuels/fsdcheck/pkg/errors"
)

// MaxDocumentBytes caps the size of a fetched document.
const MaxDocumentBytes = 64 << 20

// DefaultClient is used by [Fetch] when no client is given.
var DefaultClient = &http.Client{Timeout: 60 * time.Second}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url and returns the response body. A 404 becomes a
// NOT_FOUND error and other non-2xx statuses an INVALID_INPUT error.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = DefaultClient
	}
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = fetchOnce(ctx, client, url)
		return err
	})
	if err != nil {
		if errors.GetCode(err) == "" && ctx.Err() == nil {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch graph document")
		}
		return nil, err
	}
	return body, nil
}

func fetchOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid url %s", url)
	}
	req.Header.Set("User-Agent", buildinfo.Short())
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "graph document not found: %s", url)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %s", url, resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeInvalidInput, "get %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	if len(data) > MaxDocumentBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph document exceeds %d bytes: %s", MaxDocumentBytes, url)
	}
	return data, nil
}
