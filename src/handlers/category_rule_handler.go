package handlers

import (
	db "amazon-ynab-server/src/db/sql"
	"amazon-ynab-server/src/models"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRuleRequest struct {
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

func (req *categoryRuleRequest) validate() string {
	cleaned := req.Keywords[:0]
	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	req.Keywords = cleaned
	req.Category = strings.TrimSpace(req.Category)

	if len(req.Keywords) == 0 {
		return "at least one keyword is required"
	}
	if req.Category == "" {
		return "category is required"
	}
	return ""
}

func CreateCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		var req categoryRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create category rule request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		rule := &models.CategoryRule{
			UserID:   userID,
			Keywords: req.Keywords,
			Category: req.Category,
		}
		created, err := db.CreateCategoryRule(r.Context(), pool, rule)
		if err != nil {
			log.Printf("ERROR: Failed to create category rule for user %d: %v", userID, err)
			http.Error(w, "failed to create category rule", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created category rule id %d for user %d, category %s", created.ID, userID, created.Category)
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetCategoryRuleByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.Atoi(ruleIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid rule id param: %s", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		rule, err := db.GetCategoryRuleByID(r.Context(), pool, userID, ruleID)
		if err != nil {
			log.Printf("ERROR: Category rule id %d not found for user %d: %v", ruleID, userID, err)
			http.Error(w, "category rule not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func GetAllCategoryRules(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		rules, err := db.GetAllCategoryRules(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get category rules for user %d: %v", userID, err)
			http.Error(w, "failed to get category rules", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rules)
	}
}

func UpdateCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.Atoi(ruleIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid rule id param: %s", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var req categoryRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update category rule request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		rule := &models.CategoryRule{
			ID:       ruleID,
			UserID:   userID,
			Keywords: req.Keywords,
			Category: req.Category,
		}
		updated, err := db.UpdateCategoryRule(r.Context(), pool, rule)
		if err != nil {
			log.Printf("ERROR: Failed to update category rule id %d for user %d: %v", ruleID, userID, err)
			http.Error(w, "failed to update category rule", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated category rule id %d for user %d", updated.ID, userID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteCategoryRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)
		ruleIDStr := chi.URLParam(r, "rule_id")
		ruleID, err := strconv.Atoi(ruleIDStr)
		if err != nil {
			log.Printf("ERROR: Invalid rule id param: %s", ruleIDStr)
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		err = db.DeleteCategoryRule(r.Context(), pool, userID, ruleID)
		if err != nil {
			log.Printf("ERROR: Failed to delete category rule id %d for user %d: %v", ruleID, userID, err)
			http.Error(w, "failed to delete category rule", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted category rule id %d for user %d", ruleID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "category rule deleted"})
	}
}
