package handlers

import (
	db "amazon-ynab-server/src/db/sql"
	"amazon-ynab-server/src/importer"
	"amazon-ynab-server/src/models"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func GetAllLearnedMappings(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		mappings, err := db.GetAllLearnedMappings(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get learned mappings for user %d: %v", userID, err)
			http.Error(w, "failed to get learned mappings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, mappings)
	}
}

// CreateLearnedMapping records a manual memo-to-category correction.
// The memo is normalized to its mapping key; re-posting the same memo
// overwrites the earlier category.
func CreateLearnedMapping(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		var req struct {
			Memo     string `json:"memo"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create learned mapping request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		prefix := importer.NormalizeMappingKey(req.Memo)
		category := strings.TrimSpace(req.Category)
		if prefix == "" || category == "" {
			http.Error(w, "memo and category are required", http.StatusBadRequest)
			return
		}

		mapping, err := db.UpsertLearnedMapping(r.Context(), pool, &models.LearnedMapping{
			UserID:     userID,
			MemoPrefix: prefix,
			Category:   category,
		})
		if err != nil {
			log.Printf("ERROR: Failed to upsert learned mapping for user %d: %v", userID, err)
			http.Error(w, "failed to save learned mapping", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Saved learned mapping id %d for user %d: %q -> %s", mapping.ID, userID, mapping.MemoPrefix, mapping.Category)
		writeJSON(w, http.StatusCreated, mapping)
	}
}

func DeleteLearnedMapping(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		mappingIDStr := chi.URLParam(r, "mapping_id")
		mappingID, err := strconv.Atoi(mappingIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid mapping id param: %s", mappingIDStr)
			http.Error(w, "invalid mapping id", http.StatusBadRequest)
			return
		}
		err = db.DeleteLearnedMapping(r.Context(), pool, userID, mappingID)
		if err != nil {
			log.Printf("ERROR: Failed to delete learned mapping id %d for user %d: %v", mappingID, userID, err)
			http.Error(w, "failed to delete learned mapping", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted learned mapping id %d for user %d", mappingID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "learned mapping deleted"})
	}
}
