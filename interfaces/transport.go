package interfaces

import "context"

// Transport posts one SIRI document to a counterpart and returns the response body.
//
//go:generate moq -stub -out mock/transport.go -pkg mock . Transport
type Transport interface {
	// Post sends body to url as application/xml.
	// Returns:
	// 1) (response body, nil) on HTTP 200;
	// 2) (nil, transport_error) on connection failure, timeout or any other status.
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}
