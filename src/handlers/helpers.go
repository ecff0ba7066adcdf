package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

// userIDFromContext reads the id the auth middleware stashed. Zero means
// an unauthenticated request slipped past the middleware, which protected
// routes treat as a server error.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value("user_id").(int64); ok {
		return int(id)
	}
	return 0
}
