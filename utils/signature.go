package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// MaxTimestampSkew is the replay window for signed requests.
const MaxTimestampSkew = 60 * time.Second

const (
	ReasonMissingSignature = "missing signature headers"
	ReasonBadTimestamp     = "expired or invalid timestamp"
	ReasonBadSignature     = "invalid signature"
)

// SignatureVerifier checks HMAC-SHA256 signatures over "{timestamp}.{body}".
type SignatureVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Sign returns the lowercase hex signature for a timestamp and body.
func (v *SignatureVerifier) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the signature is valid and fresh. The reason is empty on success.
func (v *SignatureVerifier) Verify(timestamp string, body []byte, signature string) (bool, string) {
	if timestamp == "" || signature == "" {
		return false, ReasonMissingSignature
	}

	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false, ReasonBadTimestamp
	}
	// Bounds are checked against now rather than by subtraction, which can overflow.
	nowMs := v.now().UnixMilli()
	window := MaxTimestampSkew.Milliseconds()
	if ms < nowMs-window || ms > nowMs+window {
		return false, ReasonBadTimestamp
	}

	expected := []byte(v.Sign(timestamp, body))
	given := []byte(strings.ToLower(signature))
	if len(expected) != len(given) {
		return false, ReasonBadSignature
	}
	if subtle.ConstantTimeCompare(expected, given) != 1 {
		return false, ReasonBadSignature
	}
	return true, ""
}
