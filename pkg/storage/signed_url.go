package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("storage: invalid token")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("storage: token expired")
)

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a signed token referencing the stored file.
func (s *SignedURLSigner) Generate(ref string) (string, time.Time, error) {
	if ref == "" {
		return "", time.Time{}, fmt.Errorf("reference required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	ts := fmt.Sprintf("%d", expiresAt.Unix())
	encodedRef := base64.RawURLEncoding.EncodeToString([]byte(ref))
	token := strings.Join([]string{ts, encodedRef, s.sign(ts, encodedRef)}, ".")
	return token, time.Unix(expiresAt.Unix(), 0), nil
}

// Parse validates a token and returns the embedded reference.
func (s *SignedURLSigner) Parse(token string) (ref string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, ErrInvalidToken
	}
	ts, encodedRef, signature := parts[0], parts[1], parts[2]

	if !hmac.Equal([]byte(s.sign(ts, encodedRef)), []byte(signature)) {
		return "", time.Time{}, ErrInvalidToken
	}
	rawRef, err := base64.RawURLEncoding.DecodeString(encodedRef)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	expUnix, err := parseUnix(ts)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt = time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return "", time.Time{}, ErrTokenExpired
	}
	return string(rawRef), expiresAt, nil
}

func (s *SignedURLSigner) sign(ts, encodedRef string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(ts + "|" + encodedRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseUnix(raw string) (int64, error) {
	var ts int64
	if _, err := fmt.Sscanf(raw, "%d", &ts); err != nil {
		return 0, ErrInvalidToken
	}
	return ts, nil
}
