// Package authctx defines the per-request authentication context threaded
// through the dispatcher and tool/resource handlers, and the context.Context
// plumbing used to carry it.
package authctx

import "context"

// AuthContext describes what the verifier learned about the caller of a
// single request. It is always present, even for an anonymous or malformed
// request: Verified distinguishes a trusted, signature-checked identity from
// everything else. Handlers must consult Verified rather than checking
// UserID/TenantID for emptiness, since an unverified context may still carry
// decoded-but-untrusted claims.
type AuthContext struct {
	// Verified is true only after a full structural decode, signature
	// check against a fetched JWKS key, issuer/audience match, and
	// expiry/not-before check all succeed.
	Verified bool

	// Reason classifies why Verified is false. Empty when Verified is
	// true. One of the internal/errors Reason* constants.
	Reason string

	// UserID is the `sub` claim. Empty when unverified.
	UserID string

	// TenantID is the `custom:tenantId` claim (falling back to
	// `tenantId`). Empty when unverified.
	TenantID string

	// TenantTier is the `custom:tenantTier` claim, defaulting to "basic"
	// when the claim is absent on an otherwise-verified token. Empty when
	// unverified.
	TenantTier string

	// RawToken is the bearer token exactly as presented, including for
	// unverified requests. Tool handlers that need to prove possession of
	// the caller's credential (whoami) take this as an explicit
	// argument rather than reading it from a process-global.
	RawToken string

	// Claims holds the decoded JWT claim set when decoding succeeded,
	// regardless of whether the signature was verified. Nil if the
	// token could not be structurally decoded at all.
	Claims map[string]interface{}
}

// Anonymous returns an AuthContext for a request that carried no usable
// token. reason explains why (missing-token, bad-auth-format, ...).
func Anonymous(reason string) *AuthContext {
	return &AuthContext{Reason: reason}
}

// DefaultTenantTier is applied when a verified token omits the tenant tier
// claim.
const DefaultTenantTier = "basic"

type contextKey struct{}

var authContextKey = contextKey{}

// WithContext returns a new context carrying ac.
func WithContext(ctx context.Context, ac *AuthContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext extracts the AuthContext stored by WithContext. Returns nil,
// false if none is present.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	if ctx == nil {
		return nil, false
	}
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	return ac, ok
}
