package api

import (
	"amazon-ynab-server/src/ai"
	"amazon-ynab-server/src/config"
	"amazon-ynab-server/src/handlers"
	"amazon-ynab-server/src/middleware"
	"amazon-ynab-server/src/ynab"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRouter(pool *pgxpool.Pool, ynabClient *ynab.Client, aiClient *ai.Client, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(cfg.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Account
			r.Get("/me", handlers.GetMe(pool))
			r.Delete("/me", handlers.DeleteAccount(pool))

			// Import pipeline
			r.Post("/import/csv", handlers.ImportCSV(pool, ynabClient, aiClient, cfg))
			r.Post("/import/preview", handlers.ImportPreview(pool, ynabClient, aiClient, cfg))
			r.Get("/import/runs", handlers.GetImportRuns(pool))

			// Order matching
			r.Post("/orders/match", handlers.MatchOrders(pool, ynabClient))
			r.Post("/orders/apply", handlers.ApplyMatches(pool, ynabClient))

			// Ledger lookups
			r.Get("/categories", handlers.GetCategories(ynabClient))
			r.Get("/ynab/ids", handlers.GetYNABIDs(ynabClient))

			// Category Rules
			r.Post("/rules", handlers.CreateCategoryRule(pool))
			r.Get("/rules", handlers.GetAllCategoryRules(pool))
			r.Get("/rules/{rule_id}", handlers.GetCategoryRuleByID(pool))
			r.Put("/rules/{rule_id}", handlers.UpdateCategoryRule(pool))
			r.Delete("/rules/{rule_id}", handlers.DeleteCategoryRule(pool))

			// Learned Mappings
			r.Get("/mappings", handlers.GetAllLearnedMappings(pool))
			r.Post("/mappings", handlers.CreateLearnedMapping(pool))
			r.Delete("/mappings/{mapping_id}", handlers.DeleteLearnedMapping(pool))

			// Cache
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache())
		})
	})

	return r
}
