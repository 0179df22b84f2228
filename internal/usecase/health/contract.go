package health

import "context"

// UpstreamChecker checks usage API availability.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) error
}
