// Package cookies names, reads and writes the gateway's session cookies.
//
// Writes go through a Tx so a handler can stage cookie changes while it talks
// to the provider and then either commit them or, on failure, clear them.
package cookies

import (
	"net/http"
	"strings"
	"time"
)

// Kind identifies one of the session cookies.
type Kind int

const (
	AccessToken Kind = iota
	RefreshToken
	CodeVerifier
)

const (
	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

func (k Kind) String() string {
	switch k {
	case AccessToken:
		return "access-token"
	case RefreshToken:
		return "refresh-token"
	case CodeVerifier:
		return "code-verifier"
	default:
		return "unknown"
	}
}

// maxAge in seconds; 0 leaves the cookie session-scoped.
func (k Kind) maxAge() int {
	switch k {
	case AccessToken:
		return int(AccessTokenTTL / time.Second)
	case RefreshToken:
		return int(RefreshTokenTTL / time.Second)
	default:
		return 0
	}
}

// Jar holds the cookie naming and attribute policy for one project.
type Jar struct {
	ProjectRef string
	Domain     string

	// TrustForwardedProto marks cookies Secure when a proxy reports
	// X-Forwarded-Proto: https.
	TrustForwardedProto bool
}

// Name returns "sb-{ref}-{kind}".
func (j Jar) Name(k Kind) string {
	return "sb-" + j.ProjectRef + "-" + k.String()
}

// Read returns the trimmed cookie value when present and non-empty.
func (j Jar) Read(r *http.Request, k Kind) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(j.Name(k))
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	return v, v != ""
}

// Secure reports whether cookies for r should carry the Secure attribute.
func (j Jar) Secure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return j.TrustForwardedProto && strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (j Jar) cookie(k Kind, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     j.Name(k),
		Value:    value,
		Path:     "/",
		Domain:   j.Domain,
		MaxAge:   k.maxAge(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (j Jar) expired(k Kind, secure bool) *http.Cookie {
	c := j.cookie(k, "", secure)
	c.MaxAge = -1
	return c
}

// Begin starts a transaction for the response to r.
func (j Jar) Begin(r *http.Request) *Tx {
	return &Tx{jar: j, secure: j.Secure(r)}
}

type op struct {
	kind  Kind
	value string
	del   bool
}

// Tx stages cookie writes. Nothing reaches the response until Commit or
// Rollback; a later op on the same kind replaces the earlier one. A Tx is
// used by a single request and is not safe for concurrent use.
type Tx struct {
	jar    Jar
	secure bool
	ops    []op
}

// Set stages kind=value.
func (tx *Tx) Set(k Kind, value string) { tx.stage(op{kind: k, value: value}) }

// Delete stages an expiring cookie for kind.
func (tx *Tx) Delete(k Kind) { tx.stage(op{kind: k, del: true}) }

func (tx *Tx) stage(o op) {
	for i := range tx.ops {
		if tx.ops[i].kind == o.kind {
			tx.ops[i] = o
			return
		}
	}
	tx.ops = append(tx.ops, o)
}

// Staged reports the pending op for kind: its value, or deleted=true.
func (tx *Tx) Staged(k Kind) (value string, deleted, ok bool) {
	for _, o := range tx.ops {
		if o.kind == k {
			return o.value, o.del, true
		}
	}
	return "", false, false
}

// Commit writes every staged op and clears the transaction.
func (tx *Tx) Commit(w http.ResponseWriter) {
	for _, o := range tx.ops {
		if o.del {
			http.SetCookie(w, tx.jar.expired(o.kind, tx.secure))
			continue
		}
		http.SetCookie(w, tx.jar.cookie(o.kind, o.value, tx.secure))
	}
	tx.ops = nil
}

// Rollback expires every cookie the transaction touched, so a failed
// operation never leaves a half-written session behind.
func (tx *Tx) Rollback(w http.ResponseWriter) {
	for _, o := range tx.ops {
		http.SetCookie(w, tx.jar.expired(o.kind, tx.secure))
	}
	tx.ops = nil
}
