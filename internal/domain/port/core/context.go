package core

import "context"

type operationIDKey struct{}

// WithOperationID attaches the id of the current CLI operation to ctx
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey{}, id)
}

// OperationID returns the operation id stored in ctx, or an empty string
func OperationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(operationIDKey{}).(string)
	return id
}
