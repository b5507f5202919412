package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware guards endpoints with a single shared API key. The hash
// comes from configuration so the plaintext key never lives in the process
// beyond the comparison. An empty hash disables authentication, which is
// the expected setup for lab use on a trusted management network.
//
// Keys are pre-hashed with SHA-256 before the bcrypt comparison; bcrypt
// truncates inputs at 72 bytes and API keys may exceed that.
func APIKeyMiddleware(apiKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKeyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-KEY")
			if key == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					key = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}
			if key == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			digest := sha256.Sum256([]byte(key))
			if err := bcrypt.CompareHashAndPassword([]byte(apiKeyHash), digest[:]); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HashAPIKey produces the bcrypt hash of an API key for storing in
// configuration. Used by the stpmap-hashkey command.
func HashAPIKey(key string) (string, error) {
	digest := sha256.Sum256([]byte(key))
	hash, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
