// Package auth turns bearer tokens into claims and claims into internal user ids.
package auth

import "context"

// Claims is the verified identity carried by a request.
type Claims struct {
	Subject  string
	Username string
	Email    string
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}
