package client

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// isNetworkErr reports whether err looks like a connectivity problem
// (timeout, refused connection, DNS failure) rather than a server-side or
// decoding failure.
func isNetworkErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
