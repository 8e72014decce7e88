package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
)

// RequestIDHeader carries a per-request identifier so client and service
// logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// newProxyTransport returns a transport that dials through the SOCKS5 proxy
// at address.
func newProxyTransport(address string) (*http.Transport, error) {
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	transport.IdleConnTimeout = 30 * time.Second
	return transport, nil
}

// isValidProxyAddress checks for a host:port address with a port in range.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// headerTransport injects default headers and a fresh request ID into every
// request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
	newID   func() string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	for k, v := range t.headers {
		if clone.Header.Get(k) == "" {
			clone.Header.Set(k, v)
		}
	}
	if clone.Header.Get(RequestIDHeader) == "" {
		clone.Header.Set(RequestIDHeader, t.newID())
	}

	return t.base.RoundTrip(clone)
}

func newRequestID() string {
	return uuid.NewString()
}
