package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

var errNoUsableKeys = errors.New("jwtx: no usable keys in set")

// KeySet is the parsed form of one fetched JWKS, indexed by kid.
// Safe for concurrent use.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]any // kid: *rsa.PublicKey | *ecdsa.PublicKey | ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]any)}
}

// Get returns the public key for kid. An empty kid matches only when the set
// holds exactly one key.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if kid != "" {
		if pk, ok := k.pub[kid]; ok {
			return pk, nil
		}
		return nil, ErrNoKey
	}

	if len(k.pub) == 1 {
		for _, pk := range k.pub {
			return pk, nil
		}
	}
	return nil, ErrNoKey
}

func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub)
}

// ResetFromJWKS swaps in the signing keys of jwks. Unsupported or malformed
// keys are skipped. If nothing usable remains the current keys are kept and
// an error is returned.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	next := make(map[string]any, len(jwks.Keys))
	var lastErr error
	for _, j := range jwks.Keys {
		if !j.signing() {
			continue
		}
		key, err := parseJWKToKey(j)
		if err != nil {
			lastErr = err
			continue
		}
		next[j.Kid] = key
	}

	if len(next) == 0 {
		if lastErr != nil {
			return fmt.Errorf("%w: %w", errNoUsableKeys, lastErr)
		}
		return errNoUsableKeys
	}

	k.mu.Lock()
	k.pub = next
	k.mu.Unlock()
	return nil
}

func parseJWKToKey(j JWK) (any, error) {
	switch j.Kty {
	case "RSA":
		n, err := decodeInt(j.N, "n")
		if err != nil {
			return nil, err
		}
		e, err := decodeInt(j.E, "e")
		if err != nil {
			return nil, err
		}
		return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil

	case "EC":
		if j.Crv != "P-256" {
			return nil, fmt.Errorf("jwtx: unsupported EC curve %q", j.Crv)
		}
		x, err := decodeInt(j.X, "x")
		if err != nil {
			return nil, err
		}
		y, err := decodeInt(j.Y, "y")
		if err != nil {
			return nil, err
		}
		return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil

	case "OKP":
		if j.Crv != "Ed25519" {
			return nil, fmt.Errorf("jwtx: unsupported OKP curve %q", j.Crv)
		}
		xb, err := base64.RawURLEncoding.DecodeString(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: decode x: %w", err)
		}
		if len(xb) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 public key size")
		}
		return ed25519.PublicKey(xb), nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported kty %q", j.Kty)
	}
}

func decodeInt(s, field string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode %s: %w", field, err)
	}
	return new(big.Int).SetBytes(b), nil
}
