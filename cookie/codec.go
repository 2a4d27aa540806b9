package cookie

import (
	"crypto/sha256"
	"errors"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// ErrBadSignature is returned when a cookie value fails signature
// verification or is structurally invalid.
var ErrBadSignature = errors.New("session cookie signature invalid")

// ErrSecretTooShort is returned when the configured cookie secret does not
// reach the minimum length.
var ErrSecretTooShort = errors.New("cookie secret must be at least 16 bytes")

const minSecretLen = 16

var hkdfInfo = []byte("session-cookie-hs256-v1")

type listClaims struct {
	Sessions []Record `json:"sessions"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the serialized session list. The cookie value is
// an HS256 compact token whose claims carry the record list; the signing key
// is derived from the configured secret with HKDF-SHA256 so the raw secret
// is never used directly as an HMAC key.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	key []byte
}

// NewCodec derives the signing key and returns a ready codec.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, ErrSecretTooShort
	}

	r := hkdf.New(sha256.New, secret, nil, hkdfInfo)
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	return &Codec{key: key}, nil
}

// Encode serializes and signs the record list into a cookie value.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
func (c *Codec) Encode(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, listClaims{Sessions: records})
	return token.SignedString(c.key)
}

// Decode verifies a cookie value and returns the carried record list.
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
func (c *Codec) Decode(value string) ([]Record, error) {
	if value == "" {
		return nil, nil
	}

	var claims listClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrBadSignature
	}

	return claims.Sessions, nil
}
