package crypto

import (
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"single", 1, false},
		{"typical", 8, false},
		{"long", 64, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := RandomString(tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("RandomString() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("RandomString() unexpected error: %v", err)
			}
			if len(s) != tt.n {
				t.Errorf("len = %d, want %d", len(s), tt.n)
			}
			for _, ch := range s {
				if !strings.ContainsRune(lowercaseChars+numberChars, ch) {
					t.Errorf("unexpected character %q", ch)
				}
			}
		})
	}
}

func TestRandomStringProducesUniqueValues(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		s, err := RandomString(16)
		if err != nil {
			t.Fatalf("RandomString() unexpected error: %v", err)
		}
		if seen[s] {
			t.Fatalf("RandomString() produced duplicate: %s", s)
		}
		seen[s] = true
	}
}
