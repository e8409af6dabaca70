// Package jwtauth verifies bearer tokens against a fixed, Cognito-shaped
// identity provider. The JWKS URI is built directly from region and user
// pool id rather than discovered from OAuth2 authorization server metadata:
// this server is a token consumer against one known IdP, not a generic
// OAuth 2.1 resource server.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
	"github.com/voyagio/mcp-tenant-server/internal/jwtauth/internal/jwks"
)

const domain = "jwtauth"

// Verifier classifies and verifies bearer tokens presented on incoming
// requests. It never panics or returns a bare error for a malformed or
// untrusted token: callers always get back an *authctx.AuthContext, with
// Verified=false and Reason set to a stable machine-readable string for
// every failure class.
type Verifier struct {
	issuer       string
	audience     string
	clockSkew    time.Duration
	jwksClient   *jwks.Client
	localDevMode bool
}

// Config carries the identity-provider settings a Verifier needs.
type Config struct {
	Region        string
	UserPoolID    string
	ClientID      string
	JWKSCacheTTL  time.Duration
	JWKSCacheSize int
	ClockSkew     time.Duration
}

// New builds a Verifier. When cfg.UserPoolID is empty the Verifier runs in
// local-dev mode: every token is decoded (if well-formed) but never trusted,
// so Verify always returns Verified=false. This lets the rest of the
// dispatcher be exercised without a real Cognito user pool.
func New(cfg Config) *Verifier {
	if cfg.UserPoolID == "" {
		return &Verifier{localDevMode: true}
	}

	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID)
	jwksURL := issuer + "/.well-known/jwks.json"

	return &Verifier{
		issuer:     issuer,
		audience:   cfg.ClientID,
		clockSkew:  cfg.ClockSkew,
		jwksClient: jwks.NewClient(jwksURL, cfg.JWKSCacheTTL, cfg.JWKSCacheSize),
	}
}

// VerifyHeader classifies and, where possible, verifies the Authorization
// header value of an incoming request. header is the raw header value
// (including the "Bearer " prefix, if any); it may be empty.
func (v *Verifier) VerifyHeader(ctx context.Context, header string) *authctx.AuthContext {
	if header == "" {
		return authctx.Anonymous(domainerrors.ReasonMissingToken)
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return authctx.Anonymous(domainerrors.ReasonBadAuthFormat)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return authctx.Anonymous(domainerrors.ReasonEmptyToken)
	}

	return v.VerifyToken(ctx, token)
}

// VerifyToken classifies and verifies a bare bearer token string (without
// the "Bearer " prefix).
func (v *Verifier) VerifyToken(ctx context.Context, token string) *authctx.AuthContext {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		ac := authctx.Anonymous(domainerrors.ReasonMalformed)
		ac.RawToken = token
		return ac
	}

	claims, _ := parsed.Claims.(jwt.MapClaims)

	alg, _ := parsed.Header["alg"].(string)
	kid, _ := parsed.Header["kid"].(string)
	if alg == "" || alg == "none" || kid == "" {
		ac := authctx.Anonymous(domainerrors.ReasonUnsignedNotOK)
		ac.RawToken = token
		ac.Claims = claims
		return ac
	}

	if v.localDevMode {
		ac := authctx.Anonymous(domainerrors.ReasonTokenInvalid)
		ac.RawToken = token
		ac.Claims = claims
		return ac
	}

	ac := v.verifySigned(ctx, token, kid, alg)
	if !ac.Verified && ac.Claims == nil {
		ac.Claims = claims
	}
	return ac
}

func (v *Verifier) verifySigned(ctx context.Context, token, kid, alg string) *authctx.AuthContext {
	key, err := v.jwksClient.GetKey(ctx, kid)
	if err != nil {
		ac := authctx.Anonymous(domainerrors.ReasonUnknownKey)
		ac.RawToken = token
		return ac
	}

	validated, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != alg {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return key, nil
	}, jwt.WithLeeway(v.clockSkew), jwt.WithIssuer(v.issuer), jwt.WithAudience(v.audience))

	if err != nil {
		ac := authctx.Anonymous(classifyParseError(err))
		ac.RawToken = token
		return ac
	}
	if !validated.Valid {
		ac := authctx.Anonymous(domainerrors.ReasonTokenInvalid)
		ac.RawToken = token
		return ac
	}

	mapClaims, ok := validated.Claims.(jwt.MapClaims)
	if !ok {
		ac := authctx.Anonymous(domainerrors.ReasonTokenInvalid)
		ac.RawToken = token
		return ac
	}

	return v.projectVerified(token, mapClaims)
}

func classifyParseError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainerrors.ReasonTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return domainerrors.ReasonNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domainerrors.ReasonWrongAudience
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domainerrors.ReasonWrongIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domainerrors.ReasonInvalidSig
	default:
		return domainerrors.ReasonTokenInvalid
	}
}

// projectVerified maps a verified Cognito claim set onto an AuthContext.
func (v *Verifier) projectVerified(token string, claims jwt.MapClaims) *authctx.AuthContext {
	sub, _ := claims["sub"].(string)

	tenantID, _ := claims["custom:tenantId"].(string)
	if tenantID == "" {
		tenantID, _ = claims["tenantId"].(string)
	}

	tier, _ := claims["custom:tenantTier"].(string)
	if tier == "" {
		tier = authctx.DefaultTenantTier
	}

	return &authctx.AuthContext{
		Verified:   true,
		UserID:     sub,
		TenantID:   tenantID,
		TenantTier: tier,
		RawToken:   token,
		Claims:     claims,
	}
}
