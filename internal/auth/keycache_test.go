package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/LVRodrigues/fpa-management/internal/errors"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

// jwksDocument renders a key set in the JWKS wire form.
func jwksDocument(kid string, key *rsa.PublicKey) []byte {
	doc := jwks{Keys: []jwk{{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}}
	data, _ := json.Marshal(doc)
	return data
}

// newJWKSServer serves the key set and counts how many times it was fetched.
func newJWKSServer(t *testing.T, kid string, key *rsa.PublicKey) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwksDocument(kid, key))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestKeyCachePrepareAndLookup(t *testing.T) {
	key := generateTestKey(t)
	server, _ := newJWKSServer(t, "kid-1", &key.PublicKey)

	cache := NewKeyCache()
	if cache.Ready() {
		t.Fatal("new cache should not be ready")
	}

	if err := cache.Prepare(context.Background(), []string{server.URL}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !cache.Ready() {
		t.Fatal("cache should be ready after prepare")
	}

	public, err := cache.Lookup("kid-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if public.N.Cmp(key.PublicKey.N) != 0 {
		t.Error("looked-up key does not match the served key")
	}
}

func TestKeyCacheUnknownKidIsAuthFailureWithoutRefetch(t *testing.T) {
	key := generateTestKey(t)
	server, hits := newJWKSServer(t, "kid-1", &key.PublicKey)

	cache := NewKeyCache()
	if err := cache.Prepare(context.Background(), []string{server.URL}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	fetched := hits.Load()

	_, err := cache.Lookup("kid-unknown")
	if !errors.Is(err, errors.CodeAuthentication) {
		t.Fatalf("lookup error = %v, want authentication failure", err)
	}
	if hits.Load() != fetched {
		t.Errorf("unknown kid triggered %d extra fetches", hits.Load()-fetched)
	}
}

func TestKeyCacheUnpreparedLookup(t *testing.T) {
	cache := NewKeyCache()
	_, err := cache.Lookup("kid-1")
	if !errors.Is(err, errors.CodeServiceError) {
		t.Fatalf("lookup error = %v, want service unavailable", err)
	}
}

func TestKeyCachePrepareIsOnce(t *testing.T) {
	key := generateTestKey(t)
	server, hits := newJWKSServer(t, "kid-1", &key.PublicKey)

	cache := NewKeyCache()
	for i := 0; i < 3; i++ {
		if err := cache.Prepare(context.Background(), []string{server.URL}); err != nil {
			t.Fatalf("prepare %d: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("endpoint fetched %d times, want 1", hits.Load())
	}
}

func TestKeyCachePrepareFailureLeavesUnprepared(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := NewKeyCache()
	err := cache.Prepare(context.Background(), []string{server.URL})
	if !errors.Is(err, errors.CodeServiceError) {
		t.Fatalf("prepare error = %v, want service unavailable", err)
	}
	if cache.Ready() {
		t.Error("cache should stay unprepared after a failed fetch")
	}
}

func TestKeyCachePrepareMergesEndpoints(t *testing.T) {
	first := generateTestKey(t)
	second := generateTestKey(t)
	serverA, _ := newJWKSServer(t, "kid-a", &first.PublicKey)
	serverB, _ := newJWKSServer(t, "kid-b", &second.PublicKey)

	cache := NewKeyCache()
	if err := cache.Prepare(context.Background(), []string{serverA.URL, serverB.URL}); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	for _, kid := range []string{"kid-a", "kid-b"} {
		if _, err := cache.Lookup(kid); err != nil {
			t.Errorf("lookup %s: %v", kid, err)
		}
	}
}
