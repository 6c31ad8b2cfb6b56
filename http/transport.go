package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
)

// HTTPTransport sends attempts over a net/http client
type HTTPTransport struct {
	client *nethttp.Client
}

// NewHTTPTransport creates a transport around client. A nil client gets a fresh
// *http.Client without its own timeout; deadlines come from the attempt context.
func NewHTTPTransport(client *nethttp.Client) *HTTPTransport {
	if client == nil {
		client = &nethttp.Client{}
	}
	return &HTTPTransport{client: client}
}

// Send performs one HTTP round trip and reads the full body
func (t *HTTPTransport) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &TransportResponse{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}
