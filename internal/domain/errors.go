package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential signals that no credential was supplied.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential signals that the upstream rejected the credential.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrUpstreamRateLimited signals that the upstream throttled the request.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	// ErrUpstreamError signals any other upstream 4xx/5xx failure.
	ErrUpstreamError = errors.New("upstream error")
	// ErrUpstreamUnreachable signals a network failure or timeout reaching the upstream.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	// ErrUpstreamProtocolError signals an unparseable upstream response.
	ErrUpstreamProtocolError = errors.New("upstream protocol error")
)

// UpstreamStatusError wraps one of the upstream sentinels with the HTTP status
// the upstream returned and any message it provided.
type UpstreamStatusError struct {
	Status int
	Detail string
	kind   error
}

func (e *UpstreamStatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: upstream status %d: %s", e.kind.Error(), e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: upstream status %d", e.kind.Error(), e.Status)
}

func (e *UpstreamStatusError) Unwrap() error { return e.kind }

// NewUpstreamStatusError classifies an upstream HTTP status into a sentinel,
// carrying the status and the upstream-provided detail through.
func NewUpstreamStatusError(status int, detail string) error {
	kind := ErrUpstreamError
	switch status {
	case 401, 403:
		kind = ErrInvalidCredential
	case 429:
		kind = ErrUpstreamRateLimited
	}
	return &UpstreamStatusError{Status: status, Detail: detail, kind: kind}
}
