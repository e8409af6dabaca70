package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// JWK represents a single JSON Web Key. Cognito user pools publish RSA keys
// only, so EC fields are not modeled here.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg,omitempty"`
	N         string `json:"n,omitempty"`
	E         string `json:"e,omitempty"`
}

// JWKS represents a JSON Web Key Set response.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// Client fetches and caches public keys from a single, fixed JWKS URL. The
// URL is constructed by the caller directly from region and user pool id
// (Cognito's well-known layout), never discovered via OAuth2 authorization
// server metadata.
type Client struct {
	httpClient *http.Client
	jwksURL    string
	cache      *Cache

	mu      sync.Mutex
	pending chan struct{} // non-nil while a refresh is in flight; closed on completion
}

// NewClient creates a client that fetches keys from jwksURL, caching them in
// a bounded cache with the given ttl and maxSize.
func NewClient(jwksURL string, ttl time.Duration, maxSize int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		jwksURL:    jwksURL,
		cache:      NewCache(ttl, maxSize),
	}
}

// GetKey returns the RSA public key for kid, fetching and caching the full
// key set on a miss. Concurrent misses for different key ids share a single
// underlying HTTP fetch: the first caller performs it, later callers wait on
// the same in-flight request instead of issuing their own.
func (c *Client) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, fmt.Errorf("jwks: key id is required")
	}

	if key, ok := c.cache.Get(kid); ok {
		return key.(*rsa.PublicKey), nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	key, ok := c.cache.Get(kid)
	if !ok {
		return nil, fmt.Errorf("jwks: key id %q not found in key set", kid)
	}
	return key.(*rsa.PublicKey), nil
}

// refresh fetches the key set once, coalescing concurrent callers onto a
// single request.
func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.pending != nil {
		wait := c.pending
		c.mu.Unlock()
		select {
		case <-wait:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	c.pending = done
	c.mu.Unlock()

	err := c.fetchAndCache(ctx)

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	close(done)

	return err
}

func (c *Client) fetchAndCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("jwks: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks: fetch %s: %w", c.jwksURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: %s returned status %d", c.jwksURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("jwks: read response: %w", err)
	}

	var set JWKS
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("jwks: parse response: %w", err)
	}

	for _, jwk := range set.Keys {
		if jwk.KeyID == "" || jwk.KeyType != "RSA" {
			continue
		}
		key, err := jwkToRSAPublicKey(&jwk)
		if err != nil {
			continue
		}
		c.cache.Set(jwk.KeyID, key)
	}

	return nil
}

func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, fmt.Errorf("jwks: missing RSA key parameters for kid %q", jwk.KeyID)
	}

	nBytes, err := base64URLDecode(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("jwks: decode modulus: %w", err)
	}
	eBytes, err := base64URLDecode(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("jwks: decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
