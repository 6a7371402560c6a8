package docsystem

import (
	"context"
	"fmt"
	"strconv"

	"folio/internal/domain"
	models "folio/internal/domain/models/docsystem"
	docsysRepo "folio/internal/domain/repositories/docsystem"

	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *postgres.RepositoryConfig) docsysRepo.CategoryRepository {
	return &PostgresCategoryRepository{
		pool: config.Pool,
	}
}

// Create creates a new category
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, category.Name).Scan(&category.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
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

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT id, name FROM categories WHERE id = $1`

	var category models.Category
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}

// GetByName retrieves a category by normalized name
func (r *PostgresCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT id, name FROM categories WHERE name = $1`

	var category models.Category
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("category '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}

// List returns all categories
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY id`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
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

// Delete removes a category
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %d is still referenced by files", id),
				ResourceType: "category",
				ResourceID:   strconv.FormatInt(id, 10),
			}
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
