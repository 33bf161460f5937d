package hotlink

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// payload is the signed content of an anti-hotlink token. The client
// fingerprint binds the token to the requesting device so that copied
// links stop working outside the session that obtained them.
type payload struct {
	FileID      string `json:"f"`
	Fingerprint string `json:"p"`
	IssuedAt    int64  `json:"t"`
}

// Issuer creates and verifies anti-hotlink download tokens.
// Tokens are a base64url JSON payload plus a truncated HMAC-SHA256
// signature, valid only within the configured max age.
type Issuer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// Config holds issuer settings.
type Config struct {
	Secret string        `env:"HOTLINK_SECRET,required"`            // Signing key; must stay private
	MaxAge time.Duration `env:"HOTLINK_TOKEN_MAX_AGE" envDefault:"1h"` // Token validity window
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source. Used in tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates a token issuer. The secret must be non-empty and the
// max age positive.
func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretRequired
	}
	if cfg.MaxAge <= 0 {
		return nil, ErrInvalidMaxAge
	}

	i := &Issuer{
		secret: []byte(cfg.Secret),
		maxAge: cfg.MaxAge,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// Issue creates a token binding fileID to the client fingerprint at the
// current time.
func (i *Issuer) Issue(fileID, fingerprint string) (string, error) {
	data, err := json.Marshal(payload{
		FileID:      fileID,
		Fingerprint: fingerprint,
		IssuedAt:    i.now().Unix(),
	})
	if err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(data)
	sigEnc := base64.RawURLEncoding.EncodeToString(i.sign(data))

	return payloadEnc + "." + sigEnc, nil
}

// Verify checks the token signature, binding and age. It returns nil only
// when the token was issued for exactly this fileID and fingerprint within
// the max-age window.
func (i *Issuer) Verify(token, fileID, fingerprint string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	if subtle.ConstantTimeCompare(sig, i.sign(data)) != 1 {
		return ErrSignatureInvalid
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return ErrInvalidToken
	}

	if p.FileID != fileID || p.Fingerprint != fingerprint {
		return ErrTokenMismatch
	}

	issuedAt := time.Unix(p.IssuedAt, 0)
	now := i.now()
	if issuedAt.After(now) || now.Sub(issuedAt) > i.maxAge {
		return ErrTokenExpired
	}

	return nil
}

// Truncating to 16 bytes keeps tokens short while leaving a 128-bit
// signature, which is beyond brute-force reach for this use.
func (i *Issuer) sign(data []byte) []byte {
	h := hmac.New(sha256.New, i.secret)
	h.Write(data)
	return h.Sum(nil)[:16]
}
