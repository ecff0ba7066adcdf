package handlers

import (
	"amazon-ynab-server/src/ai"
	"amazon-ynab-server/src/config"
	db "amazon-ynab-server/src/db/sql"
	"amazon-ynab-server/src/importer"
	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
	"bufio"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// parseUpload reads the "file" part of a multipart upload and runs the
// right parser. Files carrying this server's own canonical header are
// re-imported with categories preserved; everything else goes through
// Amazon column detection.
func parseUpload(r *http.Request) (rows []models.CanonicalRow, filename string, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	buffered := bufio.NewReader(io.LimitReader(file, maxUploadBytes))
	canonical, err := looksCanonical(buffered)
	if err != nil {
		return nil, "", err
	}

	if canonical {
		rows, err = importer.ParseCanonicalCSV(buffered)
	} else {
		rows, err = importer.ParseAmazonCSV(buffered)
	}
	if err != nil {
		return nil, "", err
	}
	return rows, header.Filename, nil
}

// looksCanonical peeks at the header line without consuming it.
func looksCanonical(r *bufio.Reader) (bool, error) {
	line, err := r.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, err
	}
	header := string(line)
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	header = strings.ToLower(header)
	return strings.Contains(header, "payee") && strings.Contains(header, "category"), nil
}

func resolveCategories(r *http.Request, pool *pgxpool.Pool, ynabClient *ynab.Client, aiClient *ai.Client, rows []models.CanonicalRow) ([]ynab.Category, error) {
	userID := userIDFromContext(r)

	mappings, err := db.GetAllLearnedMappings(r.Context(), pool, userID)
	if err != nil {
		return nil, err
	}
	rules, err := db.GetAllCategoryRules(r.Context(), pool, userID)
	if err != nil {
		return nil, err
	}
	categories, err := cachedCategories(r.Context(), ynabClient)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	resolver := importer.NewResolver(mappings, rules, aiClient)
	resolver.ResolveAll(r.Context(), rows, names)
	return categories, nil
}

// ImportPreview parses and categorizes an upload without touching the
// ledger. ?format=csv downloads the canonical interchange file for
// offline review; the default is JSON.
func ImportPreview(pool *pgxpool.Pool, ynabClient *ynab.Client, aiClient *ai.Client, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, filename, err := parseUpload(r)
		if err != nil {
			log.Printf("ERROR: Failed to parse uploaded CSV: %v", err)
			http.Error(w, "could not parse uploaded file: "+err.Error(), http.StatusBadRequest)
			return
		}

		categories, err := resolveCategories(r, pool, ynabClient, aiClient, rows)
		if err != nil {
			log.Printf("ERROR: Failed to resolve categories for preview of %s: %v", filename, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Preview of %s - %d rows", filename, len(rows))

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="canonical.csv"`)
			if err := importer.WriteCanonicalCSV(w, rows); err != nil {
				log.Printf("ERROR: Failed to write canonical CSV: %v", err)
			}
			return
		}

		// Dry-run the build so the preview shows what an import would
		// actually do, including duplicate skips.
		preview := map[string]interface{}{
			"rows_parsed": len(rows),
			"rows":        rows,
		}
		if len(rows) > 0 {
			duplicates, err := buildDuplicateIndex(r, ynabClient, rows, cfg.DuplicateDays)
			if err != nil {
				log.Printf("ERROR: Failed to fetch existing transactions for preview of %s: %v", filename, err)
				http.Error(w, "failed to fetch existing transactions", http.StatusBadGateway)
				return
			}
			build := importer.BuildTransactions(rows, importer.BuildOptions{
				AccountID:   cfg.YNABAccountID,
				CategoryIDs: importer.CategoryIDMap(categories),
				Duplicates:  duplicates,
			})
			preview["would_create"] = len(build.Transactions)
			preview["skipped_duplicates"] = build.SkippedDuplicates
			preview["skipped_zero_amount"] = build.SkippedZeroAmount
		}
		writeJSON(w, http.StatusOK, preview)
	}
}

// ImportCSV runs the full pipeline: parse, categorize, drop what the
// ledger already has, and create the rest in one batch.
func ImportCSV(pool *pgxpool.Pool, ynabClient *ynab.Client, aiClient *ai.Client, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now().UTC()

		rows, filename, err := parseUpload(r)
		if err != nil {
			log.Printf("ERROR: Failed to parse uploaded CSV: %v", err)
			http.Error(w, "could not parse uploaded file: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(rows) == 0 {
			http.Error(w, "no importable rows found", http.StatusBadRequest)
			return
		}

		categories, err := resolveCategories(r, pool, ynabClient, aiClient, rows)
		if err != nil {
			log.Printf("ERROR: Failed to resolve categories for import of %s: %v", filename, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		duplicates, err := buildDuplicateIndex(r, ynabClient, rows, cfg.DuplicateDays)
		if err != nil {
			log.Printf("ERROR: Failed to fetch existing transactions for %s: %v", filename, err)
			http.Error(w, "failed to fetch existing transactions", http.StatusBadGateway)
			return
		}

		build := importer.BuildTransactions(rows, importer.BuildOptions{
			AccountID:   cfg.YNABAccountID,
			CategoryIDs: importer.CategoryIDMap(categories),
			Duplicates:  duplicates,
		})

		result := models.ImportResult{
			RunID:             uuid.NewString(),
			RowsParsed:        len(rows),
			SkippedDuplicates: build.SkippedDuplicates,
			SkippedZeroAmount: build.SkippedZeroAmount,
		}

		if len(build.Transactions) > 0 {
			saved, err := ynabClient.CreateTransactions(r.Context(), build.Transactions)
			if err != nil {
				log.Printf("ERROR: Failed to create transactions for %s: %v", filename, err)
				http.Error(w, "failed to create transactions: "+err.Error(), http.StatusBadGateway)
				return
			}
			result.Created = len(saved.Transactions)
			result.ServerDuplicates = len(saved.DuplicateImportIDs)
		}

		run := models.ImportRun{
			ID:                result.RunID,
			UserID:            userIDFromContext(r),
			Filename:          filename,
			RowsParsed:        result.RowsParsed,
			Created:           result.Created,
			SkippedDuplicates: result.SkippedDuplicates,
			SkippedZeroAmount: result.SkippedZeroAmount,
			ServerDuplicates:  result.ServerDuplicates,
			StartedAt:         startedAt,
			FinishedAt:        time.Now().UTC(),
		}
		if err := db.CreateImportRun(r.Context(), pool, &run); err != nil {
			// The transactions are already in the ledger; losing the
			// run record is not worth failing the request over.
			log.Printf("ERROR: Failed to record import run %s: %v", run.ID, err)
		}

		log.Printf("INFO: Import %s of %s - parsed %d, created %d, skipped %d duplicate(s), %d zero-amount, %d server duplicate(s)",
			run.ID, filename, result.RowsParsed, result.Created, result.SkippedDuplicates, result.SkippedZeroAmount, result.ServerDuplicates)

		writeJSON(w, http.StatusCreated, result)
	}
}

// buildDuplicateIndex fetches existing transactions covering the
// incoming date range, widened backward by the tolerance so boundary
// duplicates are still caught.
func buildDuplicateIndex(r *http.Request, client *ynab.Client, rows []models.CanonicalRow, days int) (*importer.DuplicateIndex, error) {
	minDate := rows[0].Date
	for _, row := range rows[1:] {
		if row.Date < minDate {
			minDate = row.Date
		}
	}
	since, ok := importer.FetchWindowStart(minDate, days)
	if !ok {
		since = minDate
	}
	existing, err := client.GetTransactionsSince(r.Context(), since)
	if err != nil {
		return nil, err
	}
	return importer.NewDuplicateIndex(existing, days), nil
}

func GetImportRuns(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		runs, err := db.GetImportRuns(r.Context(), pool, userIDFromContext(r), limit)
		if err != nil {
			log.Printf("ERROR: Failed to fetch import runs: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}
