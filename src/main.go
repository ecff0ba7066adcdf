package main

import (
	"amazon-ynab-server/src/ai"
	"amazon-ynab-server/src/api"
	"amazon-ynab-server/src/config"
	"amazon-ynab-server/src/db"
	"amazon-ynab-server/src/ynab"
	"context"
	"log"
	"net/http"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	db.InitCache()

	ynabClient := ynab.NewClient(cfg.YNABBaseURL, cfg.YNABAccessToken, cfg.YNABBudgetID, cfg.YNABAccountID)
	aiClient := ai.NewClient(cfg.AIServiceURL, cfg.AIServiceToken)
	if !aiClient.Enabled() {
		log.Println("INFO: AI categorization disabled, using rules only")
	}

	// Router
	router := api.NewRouter(pool, ynabClient, aiClient, cfg)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
