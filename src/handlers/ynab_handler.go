package handlers

import (
	"amazon-ynab-server/src/ynab"
	"log"
	"net/http"
)

// GetYNABIDs lists budgets and their accounts so the operator can find
// the budget and account ids for the environment config.
func GetYNABIDs(client *ynab.Client) http.HandlerFunc {
	type budgetWithAccounts struct {
		ID       string         `json:"id"`
		Name     string         `json:"name"`
		Accounts []ynab.Account `json:"accounts"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		budgets, err := client.GetBudgets(r.Context())
		if err != nil {
			log.Printf("ERROR: Failed to fetch budgets: %v", err)
			http.Error(w, "failed to fetch budgets", http.StatusBadGateway)
			return
		}

		out := make([]budgetWithAccounts, 0, len(budgets))
		for _, b := range budgets {
			accounts, err := client.GetAccounts(r.Context(), b.ID)
			if err != nil {
				log.Printf("ERROR: Failed to fetch accounts for budget %s: %v", b.ID, err)
				http.Error(w, "failed to fetch accounts", http.StatusBadGateway)
				return
			}
			out = append(out, budgetWithAccounts{ID: b.ID, Name: b.Name, Accounts: accounts})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
