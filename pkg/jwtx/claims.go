package jwtx

import "github.com/golang-jwt/jwt/v5"

// Identity is the caller identity carried by a verified access token.
// Fields are empty when the claim is missing or not a JSON string.
type Identity struct {
	Subject  string `json:"sub"`
	Audience string `json:"aud,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Authenticated reports whether the identity names a subject.
func (i Identity) Authenticated() bool { return i.Subject != "" }

// identityFromClaims keeps string claims only. An array "aud" or numeric
// "sub" yields an empty field rather than a coerced value.
func identityFromClaims(c jwt.MapClaims) Identity {
	sub, _ := c["sub"].(string)
	aud, _ := c["aud"].(string)
	role, _ := c["role"].(string)
	return Identity{Subject: sub, Audience: aud, Role: role}
}
