package suggest

import "context"

// RecentReader reads a device's recent queries, most-recent-first.
type RecentReader interface {
	Get(ctx context.Context, device string) ([]string, error)
}
