package common

import (
	"context"
	"strings"
)

type ownerKey struct{}

// WithOwner attaches the resolved owner identity to ctx
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, strings.TrimSpace(ownerID))
}

// OwnerFromContext returns the owner identity attached by WithOwner
func OwnerFromContext(ctx context.Context) (string, error) {
	ownerID, _ := ctx.Value(ownerKey{}).(string)
	if ownerID == "" {
		return "", ErrMissingOwner
	}
	return ownerID, nil
}
