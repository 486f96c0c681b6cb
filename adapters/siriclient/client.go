// Package siriclient posts SIRI documents to counterparts over HTTP.
package siriclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vdv736/interfaces"
	"vdv736/service"
	"vdv736/siri"
)

// DefaultTimeout bounds one request/response round trip.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps the answer size read from a counterpart.
const maxResponseBytes = 16 << 20

// HTTP creates an interfaces.Transport over client, applying timeout to every call. Panics on nil
// client or non-positive timeout.
func HTTP(client *http.Client, timeout time.Duration) interfaces.Transport {
	if timeout <= 0 {
		panic("adapters.siriclient.client.go: timeout must be positive")
	}
	return &httpTransport{
		client:  service.NilPanic(client, "adapters.siriclient.client.go: http client is required"),
		timeout: timeout,
	}
}

type httpTransport struct {
	client  *http.Client
	timeout time.Duration
}

// Post sends body with Content-Type application/xml. Anything but HTTP 200 is a transport error.
func (h *httpTransport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, service.NewTransportError("invalid request", fmt.Errorf("build POST %s, err: %w", url, err))
	}
	req.Header.Set("Content-Type", siri.ContentType)
	req.Header.Set("Accept", siri.ContentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, service.NewTransportError("request failed", fmt.Errorf("POST %s, err: %w", url, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, service.NewTransportError("reading response failed", fmt.Errorf("POST %s, err: %w", url, err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, service.NewTransportError("unexpected status", fmt.Errorf("POST %s returned %d", url, resp.StatusCode))
	}
	return raw, nil
}
