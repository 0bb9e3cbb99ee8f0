package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"spendgate/internal/common"
	"spendgate/internal/model"
)

// GetCategories returns all categories with their approved domain sets,
// ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, initial_limit, remaining_budget, created_at
		FROM categories
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	byID := make(map[int64]int)
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.InitialLimit, &cat.RemainingBudget, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		byID[cat.ID] = len(categories)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	domainRows, err := s.db.QueryContext(ctx, `SELECT category_id, name FROM domains ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer domainRows.Close()

	for domainRows.Next() {
		var categoryID int64
		var domain string
		if err := domainRows.Scan(&categoryID, &domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		if idx, ok := byID[categoryID]; ok {
			categories[idx].Domains = append(categories[idx].Domains, domain)
		}
	}
	if err := domainRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domains: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its name, or nil if it does not
// exist. Lookup is case-insensitive.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, initial_limit, remaining_budget, created_at
		FROM categories
		WHERE name = ?`

	var cat model.Category
	err := s.db.QueryRowContext(ctx, query, model.NormalizeCategoryName(name)).Scan(
		&cat.ID, &cat.Name, &cat.InitialLimit, &cat.RemainingBudget, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	domains, err := s.getDomains(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	cat.Domains = domains

	return &cat, nil
}

func (s *SQLiteStorage) getDomains(ctx context.Context, categoryID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM domains WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domains: %w", err)
	}
	return domains, nil
}

// CreateCategory creates a new category with the given spending limit and
// approved domains. The remaining budget starts equal to the limit. The name
// is stored lowercase; creating a duplicate returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, limit float64, domains []string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateAmount(limit, "limit"); err != nil {
		return nil, err
	}

	normalized := model.NormalizeCategoryName(name)

	existing, err := s.GetCategoryByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, normalized)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO categories (name, initial_limit, remaining_budget) VALUES (?, ?, ?)`,
		normalized, limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	for _, domain := range domains {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO domains (category_id, name) VALUES (?, ?)`, id, domain); err != nil {
			return nil, fmt.Errorf("failed to insert domain %q: %w", domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit category: %w", err)
	}

	slog.Info("created category", "name", normalized, "limit", limit, "domains", len(domains))
	return s.GetCategoryByName(ctx, normalized)
}

// RenameCategory renames a category. The new name must not collide with an
// existing category.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, name, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	normalized := model.NormalizeCategoryName(name)
	newNormalized := model.NormalizeCategoryName(newName)
	if normalized == newNormalized {
		return nil
	}

	conflict, err := s.GetCategoryByName(ctx, newNormalized)
	if err != nil {
		return err
	}
	if conflict != nil {
		return fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, newNormalized)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE name = ?`, newNormalized, normalized)
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rename result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %q", common.ErrNotFound, normalized)
	}
	return nil
}

// UpdateCategoryLimit sets a category's limit and remaining budget in a
// single statement. The caller computes the rescaled remaining balance; this
// method only persists it.
func (s *SQLiteStorage) UpdateCategoryLimit(ctx context.Context, name string, newLimit, newRemaining float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := validateAmount(newLimit, "newLimit"); err != nil {
		return err
	}
	if err := validateAmount(newRemaining, "newRemaining"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET initial_limit = ?, remaining_budget = ? WHERE name = ?`,
		newLimit, newRemaining, model.NormalizeCategoryName(name))
	if err != nil {
		return fmt.Errorf("failed to update category limit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check limit update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	return nil
}

// ReplaceCategoryDomains replaces the category's approved domain set
// wholesale.
func (s *SQLiteStorage) ReplaceCategoryDomains(ctx context.Context, name string, domains []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	cat, err := s.GetCategoryByName(ctx, name)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domains WHERE category_id = ?`, cat.ID); err != nil {
		return fmt.Errorf("failed to clear domains: %w", err)
	}
	for _, domain := range domains {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO domains (category_id, name) VALUES (?, ?)`, cat.ID, domain); err != nil {
			return fmt.Errorf("failed to insert domain %q: %w", domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit domain update: %w", err)
	}

	slog.Info("replaced category domains", "category", cat.Name, "domains", len(domains))
	return nil
}

// DeleteCategory removes a category and, via the foreign key cascade, its
// whitelist entries.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE name = ?`, model.NormalizeCategoryName(name))
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	return nil
}

// DeductBudget atomically deducts amount from the category's remaining
// budget, refusing the mutation when it would go negative. It returns the
// balance after the operation. A non-positive amount is a no-op that still
// succeeds. The guard lives in the UPDATE statement itself, so two
// concurrent deductions can never both observe the same sufficient balance
// and overdraw.
func (s *SQLiteStorage) DeductBudget(ctx context.Context, name string, amount float64) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}

	normalized := model.NormalizeCategoryName(name)

	if amount <= 0 {
		cat, err := s.GetCategoryByName(ctx, normalized)
		if err != nil {
			return 0, err
		}
		if cat == nil {
			return 0, fmt.Errorf("%w: category %q", common.ErrNotFound, normalized)
		}
		return cat.RemainingBudget, nil
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories
		 SET remaining_budget = remaining_budget - ?
		 WHERE name = ? AND remaining_budget - ? >= 0`,
		amount, normalized, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to deduct budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deduction result: %w", err)
	}

	cat, err := s.GetCategoryByName(ctx, normalized)
	if err != nil {
		return 0, err
	}
	if cat == nil {
		return 0, fmt.Errorf("%w: category %q", common.ErrNotFound, normalized)
	}

	if affected == 0 {
		return cat.RemainingBudget, fmt.Errorf("%w: category %q has %.2f remaining, requested %.2f",
			common.ErrInsufficientBudget, normalized, cat.RemainingBudget, amount)
	}

	slog.Debug("deducted budget",
		"category", normalized,
		"amount", amount,
		"remaining", cat.RemainingBudget)
	return cat.RemainingBudget, nil
}
