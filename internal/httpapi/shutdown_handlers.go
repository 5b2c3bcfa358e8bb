package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
)

func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ShutdownHandler stops the server when called from loopback with the
// right X-Shutdown-Token. shutdown runs after the response is written.
func ShutdownHandler(token string, shutdown func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Local-only guard
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			WriteError(w, r, http.StatusForbidden, CodeForbidden, "forbidden")
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		go shutdown()
	}
}
