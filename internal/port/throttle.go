package port

import "context"

// Throttle spaces out calls against a shared external rate-limit
// budget. Wait blocks until the caller may proceed or ctx is done.
type Throttle interface {
	Wait(ctx context.Context, key string) error
}
