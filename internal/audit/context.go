package audit

import (
	"context"
	"strings"
)

type metaKey struct{}

const fallbackIP = "0.0.0.0"

// ClientMeta is the request metadata recorded with every audit entry.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// WithClientMeta attaches client metadata to the context for audit writes.
// The forwarded-for value wins over the direct peer address; the first
// entry of a comma-separated list is the original client.
func WithClientMeta(ctx context.Context, forwardedFor, remoteAddr, userAgent string) context.Context {
	ip := strings.TrimSpace(remoteAddr)
	if ff := strings.TrimSpace(forwardedFor); ff != "" {
		ip = strings.TrimSpace(strings.SplitN(ff, ",", 2)[0])
	}
	if ip == "" {
		ip = fallbackIP
	}
	return context.WithValue(ctx, metaKey{}, ClientMeta{IPAddress: ip, UserAgent: userAgent})
}

// MetaFromContext returns the client metadata, defaulting to the sentinel
// address and an empty user agent when none was attached.
func MetaFromContext(ctx context.Context) ClientMeta {
	if m, ok := ctx.Value(metaKey{}).(ClientMeta); ok {
		if m.IPAddress == "" {
			m.IPAddress = fallbackIP
		}
		return m
	}
	return ClientMeta{IPAddress: fallbackIP}
}
