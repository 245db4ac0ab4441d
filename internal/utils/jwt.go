package utils // package utils provides token creation and hashing helpers

import (
	"crypto/rand"   // secure random bytes for refresh tokens
	"crypto/sha256" // SHA-256 hashing of refresh tokens at rest
	"encoding/hex"  // hex encoding of digests and random material
	"time"          // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // signed JWT access tokens
)

// AccessToken is a signed HS256 JWT together with its expiry.  Access
// tokens are short-lived and travel in the Authorization header on every
// protected call.
type AccessToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiration time
}

// RefreshToken is the long-lived credential used to mint new access
// tokens.  Raw is handed to the client once; the database keeps only a
// SHA-256 hash of it.
type RefreshToken struct {
	Raw string    // raw token returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an actor.  The claims
// carry the actor id as subject (sub), the actor's role, the expiration
// (exp) and the issued-at time (iat).  ttlMin is the token lifetime in
// minutes.
func NewAccessToken(secret string, actorID uint64, role string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  actorID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically random token and its
// expiration.  ttlDays controls how many days the token stays valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of a raw refresh token as a hex
// string.  Only the hash is persisted, so a leaked table cannot be used
// to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string built from n bytes of secure
// random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
