package db

import (
	"amazon-ynab-server/src/models"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetAllLearnedMappings returns the user's mappings in insertion order,
// which is also the order the resolver consults them in.
func GetAllLearnedMappings(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.LearnedMapping, error) {
	query := `
		SELECT id, user_id, memo_prefix, category, created_at, updated_at
		FROM learned_mappings
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []models.LearnedMapping
	for rows.Next() {
		var m models.LearnedMapping
		err := rows.Scan(&m.ID, &m.UserID, &m.MemoPrefix, &m.Category, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpsertLearnedMapping records a memo-prefix correction. Re-correcting
// the same prefix overwrites the earlier category.
func UpsertLearnedMapping(ctx context.Context, pool *pgxpool.Pool, mapping *models.LearnedMapping) (*models.LearnedMapping, error) {
	query := `
		INSERT INTO learned_mappings (user_id, memo_prefix, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, memo_prefix)
		DO UPDATE SET category = EXCLUDED.category, updated_at = NOW()
		RETURNING id, user_id, memo_prefix, category, created_at, updated_at
	`
	var m models.LearnedMapping
	err := pool.QueryRow(ctx, query, mapping.UserID, mapping.MemoPrefix, mapping.Category).
		Scan(&m.ID, &m.UserID, &m.MemoPrefix, &m.Category, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func DeleteLearnedMapping(ctx context.Context, pool *pgxpool.Pool, userID, mappingID int) error {
	query := `DELETE FROM learned_mappings WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, mappingID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("learned mapping not found")
	}
	return nil
}
