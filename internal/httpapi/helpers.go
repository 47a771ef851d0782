package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/BahodirovaS/take4admin/internal/observability"
)

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError surfaces a failed store call as a 500 with the store's
// message passed through. Not-found on admin writes lands here too; the
// store decides how much detail the message carries.
func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, err.Error())
}

// requireAdmin runs the token gate against the request header. It writes
// the 401 itself and reports whether the caller may proceed.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !s.gate.Allow(r.Header.Get(adminTokenHeader)) {
		observability.AdminUnauthorized.Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}
