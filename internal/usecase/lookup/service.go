// Package lookup implements the usage proxy core: one inbound credential,
// one outbound lookup, one normalized result.
package lookup

import (
	"context"
	"strings"

	"github.com/kailas-cloud/keymeter/internal/domain"
	"github.com/kailas-cloud/keymeter/internal/domain/quota"
)

// Service handles usage lookups. It holds no per-request state, so concurrent
// lookups need no coordination.
type Service struct {
	fetcher UsageFetcher
}

// New creates a Service.
func New(fetcher UsageFetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Lookup resolves the usage state for a credential. An empty credential is
// rejected before any outbound call is made. The credential itself is opaque:
// the upstream is the source of truth for validity.
func (s *Service) Lookup(ctx context.Context, credential string) (quota.Quota, error) {
	if strings.TrimSpace(credential) == "" {
		return quota.Quota{}, domain.ErrMissingCredential
	}
	return s.fetcher.Fetch(ctx, credential)
}
