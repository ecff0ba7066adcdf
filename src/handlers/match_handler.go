package handlers

import (
	cache "amazon-ynab-server/src/db"
	db "amazon-ynab-server/src/db/sql"
	"amazon-ynab-server/src/importer"
	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type matchRequest struct {
	Orders []models.ScrapedOrder `json:"orders"`
	// SinceDate overrides the fetch window derived from the orders.
	SinceDate string `json:"since_date,omitempty"`
}

// MatchOrders pairs scraped orders against existing ledger transactions
// and suggests a category for each match from the order's contents.
func MatchOrders(pool *pgxpool.Pool, ynabClient *ynab.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode match request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.Orders) == 0 {
			http.Error(w, "no orders provided", http.StatusBadRequest)
			return
		}

		since := req.SinceDate
		if since == "" {
			minDate := req.Orders[0].Date
			for _, o := range req.Orders[1:] {
				if o.Date < minDate {
					minDate = o.Date
				}
			}
			if s, ok := importer.FetchWindowStart(minDate, importer.OrderDateTolerance); ok {
				since = s
			} else {
				http.Error(w, "orders carry no usable dates", http.StatusBadRequest)
				return
			}
		}

		transactions, err := cachedTransactionsSince(r, ynabClient, since)
		if err != nil {
			log.Printf("ERROR: Failed to fetch transactions since %s: %v", since, err)
			http.Error(w, "failed to fetch transactions", http.StatusBadGateway)
			return
		}

		result := importer.MatchOrders(req.Orders, transactions)

		if err := suggestCategories(r, pool, ynabClient, result.Matched); err != nil {
			log.Printf("ERROR: Failed to suggest categories for matches: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Matched %d order(s) against %d transaction(s) - %d matched, %d orders unmatched",
			len(req.Orders), len(transactions), len(result.Matched), len(result.UnmatchedOrders))

		writeJSON(w, http.StatusOK, result)
	}
}

// suggestCategories fills in suggested categories for matched pairs
// using the local resolution tiers against each order's representative
// item title.
func suggestCategories(r *http.Request, pool *pgxpool.Pool, ynabClient *ynab.Client, matched []importer.MatchedTransaction) error {
	if len(matched) == 0 {
		return nil
	}
	userID := userIDFromContext(r)

	mappings, err := db.GetAllLearnedMappings(r.Context(), pool, userID)
	if err != nil {
		return err
	}
	rules, err := db.GetAllCategoryRules(r.Context(), pool, userID)
	if err != nil {
		return err
	}
	categories, err := cachedCategories(r.Context(), ynabClient)
	if err != nil {
		return err
	}
	categoryIDs := importer.CategoryIDMap(categories)

	resolver := importer.NewResolver(mappings, rules, nil)
	for i := range matched {
		category := resolver.ResolveLocal(importer.RepresentativeMemo(matched[i].Order))
		if category == "" {
			continue
		}
		matched[i].SuggestedCategory = category
		matched[i].SuggestedCategoryID = categoryIDs[strings.ToLower(category)]
	}
	return nil
}

func cachedTransactionsSince(r *http.Request, client *ynab.Client, since string) ([]ynab.Transaction, error) {
	cacheKey := "ynab_transactions_" + since
	if cached, found := cache.Cache.Get(cacheKey); found {
		if transactions, ok := cached.([]ynab.Transaction); ok {
			return transactions, nil
		}
	}

	transactions, err := client.GetTransactionsSince(r.Context(), since)
	if err != nil {
		return nil, err
	}
	cache.SetTransactionCache(cacheKey, transactions)
	return transactions, nil
}

type applyRequest struct {
	Updates []applyUpdate `json:"updates"`
}

type applyUpdate struct {
	TransactionID string `json:"transaction_id"`
	CategoryID    string `json:"category_id"`
	// CategoryName plus Memo teach the resolver: the memo's prefix maps
	// to this category on future imports.
	CategoryName string `json:"category_name,omitempty"`
	Memo         string `json:"memo,omitempty"`
}

// ApplyMatches patches category assignments onto existing ledger
// transactions and records the corrections as learned mappings.
func ApplyMatches(pool *pgxpool.Pool, ynabClient *ynab.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode apply request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if len(req.Updates) == 0 {
			http.Error(w, "no updates provided", http.StatusBadRequest)
			return
		}

		updates := make([]ynab.UpdateTransaction, 0, len(req.Updates))
		for _, u := range req.Updates {
			if u.TransactionID == "" || u.CategoryID == "" {
				http.Error(w, "transaction_id and category_id are required", http.StatusBadRequest)
				return
			}
			updates = append(updates, ynab.UpdateTransaction{
				ID:         u.TransactionID,
				CategoryID: u.CategoryID,
			})
		}

		saved, err := ynabClient.UpdateTransactions(r.Context(), updates)
		if err != nil {
			log.Printf("ERROR: Failed to update transactions: %v", err)
			http.Error(w, "failed to update transactions: "+err.Error(), http.StatusBadGateway)
			return
		}

		// The ledger changed under any cached fetch.
		cache.ClearAllTransactionCaches()

		userID := userIDFromContext(r)
		learned := 0
		for _, u := range req.Updates {
			if u.CategoryName == "" || u.Memo == "" {
				continue
			}
			prefix := importer.NormalizeMappingKey(u.Memo)
			if prefix == "" {
				continue
			}
			_, err := db.UpsertLearnedMapping(r.Context(), pool, &models.LearnedMapping{
				UserID:     userID,
				MemoPrefix: prefix,
				Category:   u.CategoryName,
			})
			if err != nil {
				log.Printf("ERROR: Failed to record learned mapping for %q: %v", prefix, err)
				continue
			}
			learned++
		}

		log.Printf("INFO: Applied %d category update(s), learned %d mapping(s)", len(saved.Transactions), learned)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"updated":          len(saved.Transactions),
			"learned_mappings": learned,
		})
	}
}
