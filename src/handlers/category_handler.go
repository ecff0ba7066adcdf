package handlers

import (
	"amazon-ynab-server/src/db"
	"amazon-ynab-server/src/ynab"
	"context"
	"log"
	"net/http"
)

const categoriesCacheKey = "ynab_categories"

// cachedCategories serves the budget's category list through the
// in-process cache. The list changes rarely; the cache is cleared via
// the admin endpoint after editing categories in YNAB.
func cachedCategories(ctx context.Context, client *ynab.Client) ([]ynab.Category, error) {
	if cached, found := db.Cache.Get(categoriesCacheKey); found {
		if categories, ok := cached.([]ynab.Category); ok {
			return categories, nil
		}
	}

	categories, err := client.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	db.SetCategoryCache(categoriesCacheKey, categories)
	return categories, nil
}

func GetCategories(client *ynab.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := cachedCategories(r.Context(), client)
		if err != nil {
			log.Printf("ERROR: Failed to fetch categories: %v", err)
			http.Error(w, "failed to fetch categories", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}
