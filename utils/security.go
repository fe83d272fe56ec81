// stickybans/utils/security.go
package utils

import (
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GetIPAddress extracts the client address from a request. chi's RealIP middleware has
// normally already folded X-Real-IP / X-Forwarded-For into RemoteAddr by this point.
func GetIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// VerifyProxySecret checks a shared secret presented by the auth proxy against its bcrypt hash.
// An empty hash disables the check.
func VerifyProxySecret(hash, secret string) bool {
	if hash == "" {
		return true
	}
	if secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
