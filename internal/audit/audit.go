// Package audit carries the identity recorded in created_by/updated_by
// columns through a request's context.
package audit

import "context"

// DefaultAuditor is recorded when no auditor was attached to the context.
const DefaultAuditor = "ACCOUNT_MS"

// MaxAuditorLength is the width of the created_by/updated_by columns.
const MaxAuditorLength = 20

type auditorKey struct{}

// WithAuditor returns a copy of ctx that records writes as made by auditor.
func WithAuditor(ctx context.Context, auditor string) context.Context {
	return context.WithValue(ctx, auditorKey{}, auditor)
}

// Auditor returns the auditor attached to ctx, or DefaultAuditor.
func Auditor(ctx context.Context) string {
	if a, ok := ctx.Value(auditorKey{}).(string); ok && a != "" {
		return a
	}
	return DefaultAuditor
}
