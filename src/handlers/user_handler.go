package handlers

import (
	db "amazon-ynab-server/src/db/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetMe returns the authenticated user's own profile.
func GetMe(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		if userID == 0 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := db.GetUserByID(userID, pool)
		if err != nil {
			log.Printf("ERROR: Failed to get user - user_id: %d: %v", userID, err)
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteAccount removes the authenticated user. The body must restate
// the user's id so a stray DELETE cannot wipe the account. Once the
// users table is empty again, registration reopens.
func DeleteAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		if userID == 0 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req struct {
			UserID int `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode delete account request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.UserID != userID {
			log.Printf("ERROR: Forbidden delete attempt - Authenticated user: %d, Requested user: %d", userID, req.UserID)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := db.DeleteUser(userID, pool); err != nil {
			log.Printf("ERROR: Failed to delete user %d: %v", userID, err)
			http.Error(w, "failed to delete user", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: User %d deleted, registration is open again", userID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message":  "user deleted",
			"redirect": "/register",
		})
	}
}
