// Copyright (C) 2017 ScyllaDB

package httpmw

import "context"

type ctxt byte

const (
	ctxHost ctxt = iota
	ctxNoRetry
	ctxNoTimeout
)

// ForceHost makes HostPool middleware send the request to host.
func ForceHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, ctxHost, host)
}

func forcedHost(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(ctxHost).(string)
	return h, ok
}

// NoRetry makes Retry middleware send the request once.
func NoRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxNoRetry, true)
}

func isNoRetry(ctx context.Context) bool {
	_, ok := ctx.Value(ctxNoRetry).(bool)
	return ok
}

// NoTimeout disables Timeout middleware, used for long polling requests
// that set their own deadline.
func NoTimeout(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxNoTimeout, true)
}

func isNoTimeout(ctx context.Context) bool {
	_, ok := ctx.Value(ctxNoTimeout).(bool)
	return ok
}
