package utils

import (
	"strings"
	"testing"
)

func TestValidateBatch(t *testing.T) {
	long := strings.Repeat("a", MaxEmailLength-len("@example.com")+1) + "@example.com"

	testCases := []struct {
		name    string
		emails  []string
		wantErr string
	}{
		{"single", []string{"a@b.com"}, ""},
		{"at limit", make([]string, 50), ""},
		{"exactly max length", []string{long[1:]}, ""},
		{"nil", nil, "non-empty"},
		{"empty", []string{}, "non-empty"},
		{"over limit", make([]string, 51), "at most 50 addresses"},
		{"entry too long", []string{"ok@example.com", long}, "at most 320 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBatch(tc.emails, 50)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
