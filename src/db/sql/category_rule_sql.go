package db

import (
	"amazon-ynab-server/src/models"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		INSERT INTO category_rules (user_id, keywords, category)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, keywords, category, created_at, updated_at
	`
	var r models.CategoryRule
	err := pool.QueryRow(ctx, query, rule.UserID, rule.Keywords, rule.Category).
		Scan(&r.ID, &r.UserID, &r.Keywords, &r.Category, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func GetCategoryRuleByID(ctx context.Context, pool *pgxpool.Pool, userID, ruleID int) (*models.CategoryRule, error) {
	query := `
		SELECT id, user_id, keywords, category, created_at, updated_at
		FROM category_rules
		WHERE id = $1 AND user_id = $2
	`
	var r models.CategoryRule
	err := pool.QueryRow(ctx, query, ruleID, userID).
		Scan(&r.ID, &r.UserID, &r.Keywords, &r.Category, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func GetAllCategoryRules(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.CategoryRule, error) {
	query := `
		SELECT id, user_id, keywords, category, created_at, updated_at
		FROM category_rules
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		err := rows.Scan(&r.ID, &r.UserID, &r.Keywords, &r.Category, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func UpdateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		UPDATE category_rules
		SET keywords = $1, category = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, keywords, category, created_at, updated_at
	`
	var r models.CategoryRule
	err := pool.QueryRow(ctx, query, rule.Keywords, rule.Category, rule.ID, rule.UserID).
		Scan(&r.ID, &r.UserID, &r.Keywords, &r.Category, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func DeleteCategoryRule(ctx context.Context, pool *pgxpool.Pool, userID, ruleID int) error {
	query := `DELETE FROM category_rules WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, ruleID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("category rule not found")
	}
	return nil
}
