// Package quota holds the usage result returned by the upstream API.
package quota

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/keymeter/internal/domain"
)

// Quota is the usage state of a single credential as reported by the upstream.
// Limit is the initial quota, Used is the consumed amount. The values are
// passed through to the caller unchanged; no percentage is derived here.
type Quota struct {
	Limit float64
	Used  float64
}

// dto mirrors the upstream payload. Pointer fields so a missing field is
// distinguishable from a zero value at the parse boundary.
type dto struct {
	Limit *float64 `json:"limit"`
	Used  *float64 `json:"used"`
}

// Parse decodes and validates an upstream usage payload. Any shape the
// upstream contract does not promise — missing fields, non-numeric values,
// non-JSON bodies — is reported as ErrUpstreamProtocolError.
func Parse(body []byte) (Quota, error) {
	var d dto
	if err := json.Unmarshal(body, &d); err != nil {
		return Quota{}, fmt.Errorf("decode usage payload: %v: %w", err, domain.ErrUpstreamProtocolError)
	}
	if d.Limit == nil {
		return Quota{}, fmt.Errorf("usage payload missing %q field: %w", "limit", domain.ErrUpstreamProtocolError)
	}
	if d.Used == nil {
		return Quota{}, fmt.Errorf("usage payload missing %q field: %w", "used", domain.ErrUpstreamProtocolError)
	}
	return Quota{Limit: *d.Limit, Used: *d.Used}, nil
}
