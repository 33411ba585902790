package jwtx

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// hmacKeyfunc serves the shared secret for HS* tokens. The parser has
// already rejected algorithms outside the configured list.
func hmacKeyfunc(secret []byte) func(context.Context) jwt.Keyfunc {
	return func(context.Context) jwt.Keyfunc {
		return func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: %s with shared secret", ErrKeyType, t.Method.Alg())
			}
			return secret, nil
		}
	}
}

// keySetKeyfunc resolves the public key named by the token's kid.
func keySetKeyfunc(r KeyResolver) func(context.Context) jwt.Keyfunc {
	return func(ctx context.Context) jwt.Keyfunc {
		return func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)

			key, err := r.ResolveKey(ctx, kid)
			if err != nil {
				return nil, err
			}

			if !keyMatchesMethod(key, t.Method) {
				return nil, fmt.Errorf("%w: %s with %T", ErrKeyType, t.Method.Alg(), key)
			}
			return key, nil
		}
	}
}

func keyMatchesMethod(key any, m jwt.SigningMethod) bool {
	switch m.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		_, ok := key.(*rsa.PublicKey)
		return ok
	case *jwt.SigningMethodECDSA:
		_, ok := key.(*ecdsa.PublicKey)
		return ok
	case *jwt.SigningMethodEd25519:
		_, ok := key.(ed25519.PublicKey)
		return ok
	default:
		return false
	}
}
