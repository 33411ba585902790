package jwtx

// JWK is one public key from a provider's key set (RFC 7517). Only signing
// keys of type RSA, EC P-256 and OKP Ed25519 are used.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`

	// RSA
	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`

	// EC / OKP
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// JWKS is the document served at a jwks_uri.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// signing reports whether the key may verify signatures. A missing "use"
// counts as signing.
func (j JWK) signing() bool {
	return j.Use == "" || j.Use == "sig"
}
