package utils

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestSigner(now time.Time) *SignatureVerifier {
	v := NewSignatureVerifier(testSecret)
	v.now = func() time.Time { return now }
	return v
}

func TestSignatureVerifier_Sign_Format(t *testing.T) {
	v := NewSignatureVerifier(testSecret)
	sig := v.Sign("1700000000000", []byte(`{"emails":[]}`))
	if len(sig) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(sig))
	}
	if sig != strings.ToLower(sig) {
		t.Errorf("expected lowercase hex, got %s", sig)
	}
	if sig != v.Sign("1700000000000", []byte(`{"emails":[]}`)) {
		t.Error("signature is not deterministic")
	}
}

func TestSignatureVerifier_Verify(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	v := newTestSigner(now)
	body := []byte(`{"emails":["a@b.com"]}`)
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	good := v.Sign(ts, body)

	testCases := []struct {
		name      string
		timestamp string
		body      []byte
		signature string
		wantOK    bool
		reason    string
	}{
		{"valid", ts, body, good, true, ""},
		{"uppercase hex accepted", ts, body, strings.ToUpper(good), true, ""},
		{"missing timestamp", "", body, good, false, ReasonMissingSignature},
		{"missing signature", ts, body, "", false, ReasonMissingSignature},
		{"non-numeric timestamp", "yesterday", body, good, false, ReasonBadTimestamp},
		{"stale timestamp", strconv.FormatInt(now.Add(-61*time.Second).UnixMilli(), 10), body, good, false, ReasonBadTimestamp},
		{"future timestamp", strconv.FormatInt(now.Add(61*time.Second).UnixMilli(), 10), body, good, false, ReasonBadTimestamp},
		{"tampered body", ts, []byte(`{"emails":["x@b.com"]}`), good, false, ReasonBadSignature},
		{"truncated signature", ts, body, good[:63], false, ReasonBadSignature},
		{"wrong signature", ts, body, strings.Repeat("0", 64), false, ReasonBadSignature},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := v.Verify(tc.timestamp, tc.body, tc.signature)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v (%s)", tc.wantOK, ok, reason)
			}
			if reason != tc.reason {
				t.Errorf("expected reason %q, got %q", tc.reason, reason)
			}
		})
	}
}

func TestSignatureVerifier_EdgeOfWindow(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	v := newTestSigner(now)
	body := []byte(`{}`)

	ts := strconv.FormatInt(now.Add(-60*time.Second).UnixMilli(), 10)
	if ok, reason := v.Verify(ts, body, v.Sign(ts, body)); !ok {
		t.Errorf("expected exactly 60s old request to pass, got %s", reason)
	}
}

func TestSignatureVerifier_FarTimestamps(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	v := newTestSigner(now)
	body := []byte(`{"emails":["a@b.com"]}`)

	testCases := []struct {
		name      string
		timestamp string
	}{
		{"far future", "99999999999999"},
		{"max int64", strconv.FormatInt(math.MaxInt64, 10)},
		{"min int64", strconv.FormatInt(math.MinInt64, 10)},
		{"zero", "0"},
		{"negative", "-1"},
		{"just past window", strconv.FormatInt(now.UnixMilli()+60_001, 10)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := v.Verify(tc.timestamp, body, v.Sign(tc.timestamp, body))
			if ok {
				t.Fatalf("expected timestamp %s to be rejected", tc.timestamp)
			}
			if reason != ReasonBadTimestamp {
				t.Errorf("expected reason %q, got %q", ReasonBadTimestamp, reason)
			}
		})
	}
}
