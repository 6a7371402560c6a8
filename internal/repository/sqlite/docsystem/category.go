package docsystem

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/sqlite"
)

// SQLiteCategoryRepository implements the CategoryRepository interface
type SQLiteCategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *sqlite.RepositoryConfig) docsysRepo.CategoryRepository {
	return &SQLiteCategoryRepository{db: config.DB}
}

func (r *SQLiteCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES (?) RETURNING id`, category.Name).Scan(&category.ID)
	if err != nil {
		if sqlite.IsDuplicateError(err) {
			existing, queryErr := r.GetByName(ctx, category.Name)
			if queryErr != nil {
				return fmt.Errorf("category '%s' already exists: %w", category.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category '%s' already exists", category.Name),
				ResourceType: "category",
				ResourceID:   strconv.FormatInt(existing.ID, 10),
			}
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	executor := sqlite.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&category.ID, &category.Name); err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

func (r *SQLiteCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	executor := sqlite.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ?`, name).Scan(&category.ID, &category.Name); err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("category '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

func (r *SQLiteCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *SQLiteCategoryRepository) Delete(ctx context.Context, id int64) error {
	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if sqlite.IsForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %d is still referenced by files", id),
				ResourceType: "category",
				ResourceID:   strconv.FormatInt(id, 10),
			}
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("category %d", id))
}
