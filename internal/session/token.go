// internal/session/token.go
//
// Folio – Form sessions: stateless signed session tokens.
//
// Context
//   The contact page receives a token when it loads the form and echoes it
//   on every blur, input, and submit call.  The token names the visitor's
//   form Controller in the Store and proves the server issued it:
//
//      base64url( id | unixMicro | HMAC_SHA256(secret, id+unixMicro) )
//
//   •  id – 16 random bytes (a v4 UUID).  Keys the Store entry.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – calculated with the configured session secret.
//
//   Verification checks the signature and ensures the timestamp is within
//   MaxAge.  Tokens survive a restart as long as the secret does; the
//   Controller behind them does not, and is recreated Idle and empty.
//
// Workflow
//   •  Issue()       → new token plus its session ID.
//   •  Verify(tok)  → session ID, or ErrInvalidToken on any failure.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idBytes    = 16
	tokenBytes = idBytes + 8 + sha256.Size // id + ts + sig

	// DefaultMaxAge bounds how long a token is accepted after issue.
	DefaultMaxAge = 2 * time.Hour
	// clockSkew tolerates tokens stamped slightly in the future.
	clockSkew = time.Minute
)

// ErrInvalidToken is returned by Verify for any malformed, forged, or
// expired token.  Callers should not distinguish the cases.
var ErrInvalidToken = errors.New("session: invalid token")

// Signer issues and verifies session tokens.
type Signer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer for secret.  An empty secret generates a
// random process-local key and logs a warning; tokens then die with the
// process.
func NewSigner(secret []byte, maxAge time.Duration) *Signer {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		zap.S().Warnw("session secret not configured; using ephemeral key")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Signer{secret: secret, maxAge: maxAge, now: time.Now}
}

// Issue creates a new token.  Call once per form load.
func (s *Signer) Issue() (token, id string) {
	uid := uuid.New()

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(s.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, uid[:]...)
	buf = append(buf, ts...)
	buf = append(buf, s.sign(uid[:], ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), uid.String()
}

// Verify returns the session ID carried by tok.
func (s *Signer) Verify(tok string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return "", ErrInvalidToken
	}

	idRaw := raw[:idBytes]
	tsBytes := raw[idBytes : idBytes+8]
	sig := raw[idBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := s.now()
	if now.Sub(issued) > s.maxAge || issued.Sub(now) > clockSkew {
		return "", ErrInvalidToken
	}

	if !hmac.Equal(sig, s.sign(idRaw, tsBytes)) {
		return "", ErrInvalidToken
	}

	uid, err := uuid.FromBytes(idRaw)
	if err != nil {
		return "", ErrInvalidToken
	}
	return uid.String(), nil
}

func (s *Signer) sign(id, ts []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(id)
	mac.Write(ts)
	return mac.Sum(nil)
}
