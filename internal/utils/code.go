package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const (
	// CodeTTL is how long a one-time code stays valid after issuance.
	CodeTTL = 300_000 * time.Millisecond

	codeMin = 100000
	codeMax = 999999
)

var (
	ErrCodeMissing  = errors.New("no pending code")
	ErrCodeExpired  = errors.New("code has expired")
	ErrCodeMismatch = errors.New("code does not match")
)

// GenerateCode returns a 6-digit code sampled uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// FingerprintCode returns the hex HMAC-SHA256 of code under secret.
// Only fingerprints are persisted, never raw codes.
func FingerprintCode(code, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckCode tells why providedCode is not acceptable, or returns nil.
// The code is valid while now-issuedAt <= CodeTTL.
func CheckCode(fingerprint *string, issuedAt *time.Time, providedCode, secret string, now time.Time) error {
	if fingerprint == nil || issuedAt == nil || *fingerprint == "" {
		return ErrCodeMissing
	}

	if now.Sub(*issuedAt) > CodeTTL {
		return ErrCodeExpired
	}

	expected := []byte(*fingerprint)
	actual := []byte(FingerprintCode(providedCode, secret))
	if !hmac.Equal(expected, actual) {
		return ErrCodeMismatch
	}

	return nil
}

// IsCodeValid is the boolean form of CheckCode.
func IsCodeValid(fingerprint *string, issuedAt *time.Time, providedCode, secret string, now time.Time) bool {
	return CheckCode(fingerprint, issuedAt, providedCode, secret, now) == nil
}
