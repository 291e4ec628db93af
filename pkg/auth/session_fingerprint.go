package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
)

// ClientFingerprint identifies the device a session token was issued to.
type ClientFingerprint struct {
	IPAddress string
	UserAgent string
	Hash      string
}

// GenerateFingerprint builds a fingerprint from the client IP and user agent.
func GenerateFingerprint(r *http.Request) *ClientFingerprint {
	ip := ClientIP(r)
	ua := r.UserAgent()
	return &ClientFingerprint{
		IPAddress: ip,
		UserAgent: ua,
		Hash:      hashFingerprint(ip, ua),
	}
}

// MatchesFingerprint reports whether r comes from the device that produced hash.
func MatchesFingerprint(r *http.Request, hash string) bool {
	return constantTimeCompare([]byte(GenerateFingerprint(r).Hash), []byte(hash))
}

func hashFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are not
// read here; behind a trusted proxy the router rewrites RemoteAddr first.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
