// internal/app/features/contact/stamp.go
package contact

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// ErrBadStamp is returned for a render stamp that is missing, forged,
// malformed or too old.
var ErrBadStamp = errors.New("contact: invalid form stamp")

const (
	stampName   = "contact_rendered_at"
	stampInfo   = "coconsult contact form stamp"
	stampMaxAge = 24 * time.Hour
)

// Stamper issues signed render-time tokens and measures how long ago they
// were issued. The token travels in a hidden field, so the visitor cannot
// claim an earlier render time. Each token carries a nonce so a stored
// inquiry can mark it used.
type Stamper struct {
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// Stamp is a decoded token.
type Stamp struct {
	ID       string
	IssuedAt time.Time
}

type stampPayload struct {
	Nonce string `json:"n"`
	At    int64  `json:"t"`
}

// NewStamper derives the signing key from secret. now may be nil, in which
// case time.Now is used.
func NewStamper(secret string, now func() time.Time) (*Stamper, error) {
	if secret == "" {
		return nil, errors.New("contact: stamp secret is empty")
	}

	hashKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(stampInfo))
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("contact: derive stamp key: %w", err)
	}

	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(stampMaxAge.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})

	if now == nil {
		now = time.Now
	}
	return &Stamper{codec: codec, now: now}, nil
}

// Issue returns a new token holding the current time.
func (s *Stamper) Issue() (string, error) {
	return s.encode(s.now())
}

// Renew returns a token with a fresh nonce and st's issue time, for a
// form whose stamp was spent on a failed send.
func (s *Stamper) Renew(st Stamp) (string, error) {
	return s.encode(st.IssuedAt)
}

func (s *Stamper) encode(at time.Time) (string, error) {
	return s.codec.Encode(stampName, stampPayload{Nonce: uuid.NewString(), At: at.UnixMilli()})
}

// Open verifies token and returns its contents.
func (s *Stamper) Open(token string) (Stamp, error) {
	if token == "" {
		return Stamp{}, ErrBadStamp
	}
	var p stampPayload
	if err := s.codec.Decode(stampName, token, &p); err != nil {
		return Stamp{}, fmt.Errorf("%w: %v", ErrBadStamp, err)
	}
	if p.Nonce == "" || p.At <= 0 {
		return Stamp{}, ErrBadStamp
	}
	return Stamp{ID: p.Nonce, IssuedAt: time.UnixMilli(p.At)}, nil
}

// Age returns the time since st was issued.
func (s *Stamper) Age(st Stamp) time.Duration {
	return s.now().Sub(st.IssuedAt)
}
