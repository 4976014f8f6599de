package geolocation

import "context"

type clientIPKey struct{}

// WithClientIP attaches the address of the device that asked for a position.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address attached by WithClientIP, if any.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
