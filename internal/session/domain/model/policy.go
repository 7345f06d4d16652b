package model

import "fmt"

// DecodePolicy decides what happens to a token whose expiry claim cannot be decoded.
type DecodePolicy string

const (
	// DecodePolicyKeep keeps the session with no scheduled expiry.
	DecodePolicyKeep DecodePolicy = "keep"
	// DecodePolicyReject treats the token as invalid and logs out.
	DecodePolicyReject DecodePolicy = "reject"
)

// ParseDecodePolicy validates a configured policy name.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch DecodePolicy(s) {
	case "", DecodePolicyKeep:
		return DecodePolicyKeep, nil
	case DecodePolicyReject:
		return DecodePolicyReject, nil
	}
	return "", fmt.Errorf("unknown token decode policy %q", s)
}
