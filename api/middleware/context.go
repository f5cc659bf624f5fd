package middleware

import "context"

type contextKey string

const ctxSessionPhone contextKey = "session_phone"

func SessionPhoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionPhone).(string); ok {
		return v
	}
	return ""
}

// WithSessionPhone injects the authenticated phone number into the context.
func WithSessionPhone(ctx context.Context, phone string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionPhone, phone)
}
