package utils // package utils provides helpers for token creation, decoding and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding functions
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // jti values for single-purpose tokens
)

// Identity is the canonical authenticated-caller structure. It is produced in
// exactly one place (DecodeIdentity) and consumed everywhere an endpoint needs
// to know who is calling. Handlers never read raw claims and never trust a
// client-supplied user id.
type Identity struct {
	UserID   uint64 // users.id
	Email    string
	FullName string // "First Last", denormalized into member rows on join
	Role     string // "user" | "admin"
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == "admin" }

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access
// tokens. Only a SHA-256 hash of Raw is stored in the database.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

const resetPurpose = "password_reset"

// NewAccessToken builds and signs an HS256 JWT carrying the caller identity:
// subject (sub), email, full name and role, plus exp/iat.
func NewAccessToken(secret string, id Identity, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"name":  id.FullName,
		"role":  id.Role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// DecodeIdentity parses and validates an access token and returns the typed
// Identity embedded in it. Any signature, expiry or claim-shape problem comes
// back as ErrInvalidToken.
func DecodeIdentity(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	uid, ok := claimUint64(claims["sub"])
	if !ok || uid == 0 {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{UserID: uid}
	id.Email, _ = claims["email"].(string)
	id.FullName, _ = claims["name"].(string)
	id.Role, _ = claims["role"].(string)
	if id.Role == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

// NewResetToken issues a short-lived single-purpose JWT for a password reset.
// The purpose claim keeps it from being replayed as an access token and the
// jti makes each issued link distinct.
func NewResetToken(secret string, userID uint64, email string, ttlMin int) (string, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":     userID,
		"email":   email,
		"purpose": resetPurpose,
		"jti":     uuid.NewString(),
		"exp":     exp.Unix(),
		"iat":     time.Now().UTC().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseResetToken validates a reset token and returns the user id it was
// issued for. Access tokens are rejected because they lack the purpose claim.
func ParseResetToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if p, _ := claims["purpose"].(string); p != resetPurpose {
		return 0, ErrInvalidToken
	}
	uid, ok := claimUint64(claims["sub"])
	if !ok || uid == 0 {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw) and
// its expiration time.
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

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string. Storing only the hash prevents stolen database rows from being used
// to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// claimUint64 normalizes the numeric forms a JWT subject can decode into.
func claimUint64(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case uint64:
		return t, true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
