package lookup

import (
	"context"

	"github.com/kailas-cloud/keymeter/internal/domain/quota"
)

// UsageFetcher performs a single usage lookup against the upstream API.
type UsageFetcher interface {
	Fetch(ctx context.Context, credential string) (quota.Quota, error)
}
