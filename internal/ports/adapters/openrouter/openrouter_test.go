package openrouter

import (
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, false},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"chatty preamble", "Sure! Here you go: {\"a\":1} hope that helps", `{"a":1}`, false},
		{"empty", "   ", "", true},
		{"no object", "no json here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactSecrets(t *testing.T) {
	key := "sk-or-v1-abcdef123456"
	in := "request failed: Authorization: Bearer " + key + ", api_key=" + key
	out := redactSecrets(in, key)
	if strings.Contains(out, key) {
		t.Fatalf("api key leaked: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %q", out)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-3, 0},
		{0, 0},
		{7.5, 7.5},
		{10, 10},
		{42, 10},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Fatalf("clampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
