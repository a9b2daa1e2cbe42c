package middleware

import "context"

type contextKey string

const ctxOrgID contextKey = "org_id"

// OrgIDFromContext returns the organization identifier set by OrgContext.
func OrgIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOrgID).(string); ok {
		return v
	}
	return ""
}

// WithOrgID injects the organization identifier into the context.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOrgID, orgID)
}
