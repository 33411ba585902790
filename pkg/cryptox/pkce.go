package cryptox

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

// PKCEVerifierBytes is the entropy behind a code verifier; it encodes to 43
// characters, the RFC 7636 minimum.
const PKCEVerifierBytes = TokenSize256

// PKCEPair is a code verifier and its S256 challenge.
type PKCEPair struct {
	CodeVerifier  string
	CodeChallenge string
}

// PKCEGenerator produces PKCE pairs. Zero fields fall back to crypto/rand and
// S256Challenge; tests substitute both.
type PKCEGenerator struct {
	Random    io.Reader
	Challenge func(verifier string) string
}

// Generate returns a fresh pair. The only failure is the entropy source.
func (g PKCEGenerator) Generate() (PKCEPair, error) {
	random := g.Random
	if random == nil {
		random = rand.Reader
	}
	challenge := g.Challenge
	if challenge == nil {
		challenge = S256Challenge
	}

	verifier, err := generateTokenFrom(random, PKCEVerifierBytes)
	if err != nil {
		return PKCEPair{}, fmt.Errorf("cryptox: pkce verifier: %w", err)
	}

	return PKCEPair{CodeVerifier: verifier, CodeChallenge: challenge(verifier)}, nil
}

// GeneratePKCE uses crypto/rand and S256.
func GeneratePKCE() (PKCEPair, error) {
	return PKCEGenerator{}.Generate()
}

// S256Challenge is base64url-nopad(SHA-256(verifier)).
func S256Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
