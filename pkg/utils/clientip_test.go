package utils

import (
	"net/http/httptest"
	"testing"
)

func TestDeriveClientIPPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"xff first segment wins", "203.0.113.9, 70.1.2.3", "198.51.100.1", "10.0.0.1:4000", "203.0.113.9"},
		{"real-ip when no xff", "", "198.51.100.1", "10.0.0.1:4000", "198.51.100.1"},
		{"remote addr fallback", "", "", "70.1.2.3:51234", "70.1.2.3"},
		{"mapped ipv4 stripped", "::ffff:203.0.113.9", "", "10.0.0.1:4000", "203.0.113.9"},
		{"ipv6 loopback normalized", "", "", "[::1]:4000", "127.0.0.1"},
		{"xff with spaces", "  203.0.113.9 ,70.1.2.3", "", "10.0.0.1:4000", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/abc", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := DeriveClientIP(req); got != tt.want {
				t.Errorf("DeriveClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPublicIP(t *testing.T) {
	public := []string{"203.0.113.9", "8.8.8.8", "2001:4860:4860::8888"}
	for _, ip := range public {
		if !IsPublicIP(ip) {
			t.Errorf("IsPublicIP(%q) = false, want true", ip)
		}
	}

	nonPublic := []string{"127.0.0.1", "10.1.2.3", "172.16.0.9", "192.168.0.1", "0.0.0.0", "::1", "fe80::1", "", "garbage"}
	for _, ip := range nonPublic {
		if IsPublicIP(ip) {
			t.Errorf("IsPublicIP(%q) = true, want false", ip)
		}
	}
}

func TestValidateShortCode(t *testing.T) {
	if err := ValidateShortCode("abcDEF1_"); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}
	for _, code := range []string{"", "short", "toolongcode", "bad code!", "has/slash"} {
		if err := ValidateShortCode(code); err == nil {
			t.Errorf("ValidateShortCode(%q) must fail", code)
		}
	}
}

func TestValidateOriginalURL(t *testing.T) {
	if err := ValidateOriginalURL("https://example.com/a?b=c"); err != nil {
		t.Errorf("valid url rejected: %v", err)
	}
	for _, raw := range []string{"", "example.com", "ftp://example.com/x", "/relative/path"} {
		if err := ValidateOriginalURL(raw); err == nil {
			t.Errorf("ValidateOriginalURL(%q) must fail", raw)
		}
	}
}
