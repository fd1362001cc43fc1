package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/LVRodrigues/fpa-management/internal/errors"
)

// jwk is one entry of a JSON Web Key Set. Only RSA signature keys are used.
type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// KeyCache holds signature-verification keys indexed by key identifier. It is
// populated at most once per process: the first successful Prepare wins and
// the cache is never refreshed afterwards. An unknown kid at lookup time is an
// authentication failure, not a trigger for a re-fetch.
type KeyCache struct {
	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	ready  bool
	client *http.Client
}

// NewKeyCache returns an empty, unprepared cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{
		keys:   make(map[string]*rsa.PublicKey),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Ready reports whether a Prepare call has completed successfully.
func (c *KeyCache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Prepare fetches every endpoint's key set and populates the cache. It is a
// no-op once the cache is ready. A network or decode failure leaves the cache
// unprepared and surfaces as a service-unavailable condition.
func (c *KeyCache) Prepare(ctx context.Context, endpoints []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	fetched := make(map[string]*rsa.PublicKey)
	for _, endpoint := range endpoints {
		set, err := c.fetch(ctx, endpoint)
		if err != nil {
			return errors.ServiceUnavailable("", err).WithDetails("jwks", endpoint)
		}
		for _, key := range set.Keys {
			if key.Kty != "RSA" || key.Kid == "" {
				continue
			}
			public, err := key.publicKey()
			if err != nil {
				return errors.ServiceUnavailable("", err).WithDetails("kid", key.Kid)
			}
			fetched[key.Kid] = public
		}
	}

	c.keys = fetched
	c.ready = true
	return nil
}

// Lookup returns the key for kid. A populated cache missing the kid reports an
// authentication failure without any network I/O; an unprepared cache reports
// service-unavailable.
func (c *KeyCache) Lookup(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil, errors.ServiceUnavailable("Key cache not prepared.", nil)
	}
	key, ok := c.keys[kid]
	if !ok {
		return nil, errors.Unauthorized("").WithDetails("kid", kid)
	}
	return key, nil
}

func (c *KeyCache) fetch(ctx context.Context, endpoint string) (*jwks, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned %s", resp.Status)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding jwks: %w", err)
	}
	return &set, nil
}

// publicKey decodes the base64url modulus and exponent into an RSA key.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus of %s: %w", k.Kid, err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent of %s: %w", k.Kid, err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
