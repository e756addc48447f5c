package interceptor

import "context"

type retryMarkerKey struct{}

// withRetryMarker returns a context recording that the call has already been
// refreshed and re-issued once.
func withRetryMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

// isRetry reports whether ctx carries the retry marker
func isRetry(ctx context.Context) bool {
	retried, _ := ctx.Value(retryMarkerKey{}).(bool)
	return retried
}
