package db

import (
	"amazon-ynab-server/src/models"
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateImportRun(ctx context.Context, pool *pgxpool.Pool, run *models.ImportRun) error {
	query := `
		INSERT INTO import_runs
			(id, user_id, filename, rows_parsed, created, skipped_duplicates,
			 skipped_zero_amount, server_duplicates, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := pool.Exec(ctx, query,
		run.ID,
		run.UserID,
		run.Filename,
		run.RowsParsed,
		run.Created,
		run.SkippedDuplicates,
		run.SkippedZeroAmount,
		run.ServerDuplicates,
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

func GetImportRuns(ctx context.Context, pool *pgxpool.Pool, userID, limit int) ([]models.ImportRun, error) {
	query := `
		SELECT id, user_id, filename, rows_parsed, created, skipped_duplicates,
		       skipped_zero_amount, server_duplicates, started_at, finished_at
		FROM import_runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var run models.ImportRun
		err := rows.Scan(
			&run.ID,
			&run.UserID,
			&run.Filename,
			&run.RowsParsed,
			&run.Created,
			&run.SkippedDuplicates,
			&run.SkippedZeroAmount,
			&run.ServerDuplicates,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
