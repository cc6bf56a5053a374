// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: adminapi.go — bcrypt-guarded HTTP admin/stats surface
//
// Purpose:
//   - GET /stats returns the current metrics.Stats snapshot as JSON.
//   - GET /healthz reports whether the server is still accepting requests.
//   - Both are gated behind a bcrypt-hashed bearer token, so the operator
//     secret never ships in plaintext config (spec.md's line protocol stays
//     exactly GET/SET/DEL; this is the admin control channel original_source
//     /src/server.cpp's `START` line generalizes into).
//
// ─────────────────────────────────────────────────────────────────────────────

package adminapi

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"lfkv/metrics"
)

// StatusFunc reports whether the data plane is currently accepting new
// requests (false once control.Shutdown has been called).
type StatusFunc func() bool

// Server is the admin HTTP handler. TokenHash is a bcrypt hash of the
// bearer token operators must present as "Authorization: Bearer <token>".
// An empty TokenHash disables auth entirely (local/dev use only).
type Server struct {
	Collector *metrics.Collector
	TokenHash string
	Healthy   StatusFunc
}

// Handler returns an http.Handler serving /stats and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.authorize(s.handleStats))
	mux.HandleFunc("/healthz", s.authorize(s.handleHealthz))
	return mux
}

func (s *Server) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.TokenHash == "" {
			next(w, r)
			return
		}
		token := bearerToken(r)
		if token == "" || bcrypt.CompareHashAndPassword([]byte(s.TokenHash), []byte(token)) != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	body, err := s.Collector.Snapshot().Encode()
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.Healthy != nil && !s.Healthy() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HashToken bcrypt-hashes a plaintext admin token for storage in
// config.Config.AdminTokenHash. Exposed so an operator-facing CLI can
// generate a hash without importing bcrypt directly.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(h), err
}
