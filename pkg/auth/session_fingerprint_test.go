package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFingerprintRequest(remoteAddr, ua string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("User-Agent", ua)
	return req
}

func TestGenerateFingerprint(t *testing.T) {
	fp := GenerateFingerprint(newFingerprintRequest("192.168.1.1:12345", "Mozilla/5.0"))

	if fp.IPAddress != "192.168.1.1" {
		t.Errorf("IPAddress = %s, want 192.168.1.1", fp.IPAddress)
	}
	if fp.UserAgent != "Mozilla/5.0" {
		t.Errorf("UserAgent = %s, want Mozilla/5.0", fp.UserAgent)
	}
	if len(fp.Hash) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(fp.Hash))
	}

	// Source port is not part of the fingerprint.
	again := GenerateFingerprint(newFingerprintRequest("192.168.1.1:54321", "Mozilla/5.0"))
	if again.Hash != fp.Hash {
		t.Error("fingerprint should not depend on the source port")
	}
}

func TestMatchesFingerprint(t *testing.T) {
	hash := GenerateFingerprint(newFingerprintRequest("192.168.1.1:12345", "Mozilla/5.0")).Hash

	tests := []struct {
		name      string
		req       *http.Request
		wantMatch bool
	}{
		{name: "same client", req: newFingerprintRequest("192.168.1.1:12345", "Mozilla/5.0"), wantMatch: true},
		{name: "different IP", req: newFingerprintRequest("192.168.1.2:12345", "Mozilla/5.0")},
		{name: "different User-Agent", req: newFingerprintRequest("192.168.1.1:12345", "Chrome/1.0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFingerprint(tt.req, hash); got != tt.wantMatch {
				t.Errorf("MatchesFingerprint() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{
			name:    "X-Forwarded-For ignored",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"},
			remote:  "192.168.1.1:12345",
			wantIP:  "192.168.1.1",
		},
		{
			name:    "X-Real-IP ignored",
			headers: map[string]string{"X-Real-IP": "203.0.113.1"},
			remote:  "192.168.1.1:12345",
			wantIP:  "192.168.1.1",
		},
		{
			name:   "RemoteAddr only",
			remote: "192.168.1.1:12345",
			wantIP: "192.168.1.1",
		},
		{
			name:   "IPv6 RemoteAddr",
			remote: "[2001:db8::1]:443",
			wantIP: "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.wantIP {
				t.Errorf("ClientIP() = %v, want %v", got, tt.wantIP)
			}
		})
	}
}
