package handlers

import (
	"amazon-ynab-server/src/db"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ClearCache empties one cache kind by name. Used after editing
// categories in YNAB so the next import sees the fresh list.
func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")
		switch cacheName {
		case "categories":
			db.ClearAllCategoryCaches()
		case "transactions":
			db.ClearAllTransactionCaches()
		default:
			http.Error(w, "unknown cache name", http.StatusBadRequest)
			return
		}
		log.Printf("INFO: Cleared %s cache", cacheName)
		writeJSON(w, http.StatusOK, map[string]string{"message": "cache cleared"})
	}
}
