package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenSegments = errors.New("token must have three dot-separated segments")
	ErrTokenPayload  = errors.New("token payload is not valid base64url JSON")
	ErrTokenExpClaim = errors.New("token exp claim is not numeric")
)

// UnverifiedExpiryDecoder reads exp from the payload segment only. The signature and
// header are never checked; the server remains the authority on validity.
type UnverifiedExpiryDecoder struct {
	parser *jwt.Parser
}

// NewUnverifiedExpiryDecoder creates a decoder that also accepts padded segments.
func NewUnverifiedExpiryDecoder() *UnverifiedExpiryDecoder {
	return &UnverifiedExpiryDecoder{parser: jwt.NewParser(jwt.WithPaddingAllowed())}
}

// DecodeExpiry implements repository.ExpiryDecoder.
func (d *UnverifiedExpiryDecoder) DecodeExpiry(token string) (time.Time, bool, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false, ErrTokenSegments
	}

	raw, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrTokenPayload, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrTokenPayload, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrTokenExpClaim, err)
	}
	// exp of 0 means no expiry.
	if exp == nil || exp.Time.Equal(time.Unix(0, 0)) {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
