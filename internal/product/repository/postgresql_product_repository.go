// Package repository provides data persistence implementations for product entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/database"
	"github.com/allisson/marketplace/internal/product/domain"

	apperrors "github.com/allisson/marketplace/internal/errors"
)

const productColumns = `id, seller_id, name, description, price, stock, is_archived, created_at, updated_at`

// PostgreSQLProductRepository handles product persistence for PostgreSQL
type PostgreSQLProductRepository struct {
	db *sql.DB
}

// NewPostgreSQLProductRepository creates a new PostgreSQLProductRepository
func NewPostgreSQLProductRepository(db *sql.DB) *PostgreSQLProductRepository {
	return &PostgreSQLProductRepository{
		db: db,
	}
}

// Create inserts a new product
func (r *PostgreSQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO products (id, seller_id, name, description, price, stock, is_archived, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		product.ID, product.SellerID, product.Name, product.Description,
		product.Price, product.Stock, product.IsArchived,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *PostgreSQLProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}
	return product, nil
}

// Update persists changes to name, description, price, stock and archive flag
func (r *PostgreSQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET name = $1, description = $2, price = $3, stock = $4, is_archived = $5, updated_at = NOW()
			  WHERE id = $6`

	result, err := querier.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.IsArchived, product.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update product")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product
func (r *PostgreSQLProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete product")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Search returns a page of non-archived products matching the filter,
// newest first.
func (r *PostgreSQLProductRepository) Search(ctx context.Context, filter domain.SearchFilter, offset, limit int) ([]*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	where, args := buildSearchWhere(filter)
	query := fmt.Sprintf(
		`SELECT %s FROM products %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search products")
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan product")
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate products")
	}
	return products, nil
}

// Count returns the total number of non-archived products matching the filter
func (r *PostgreSQLProductRepository) Count(ctx context.Context, filter domain.SearchFilter) (int, error) {
	querier := database.GetTx(ctx, r.db)

	where, args := buildSearchWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM products %s`, where)

	var count int
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count products")
	}
	return count, nil
}

// ListBySeller returns every product owned by a seller, archived included,
// newest first.
func (r *PostgreSQLProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE seller_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		productColumns,
	)

	rows, err := querier.QueryContext(ctx, query, sellerID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list products by seller")
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan product")
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate products")
	}
	return products, nil
}

// buildSearchWhere assembles the WHERE clause shared by Search and Count.
// Archived products never match a search.
func buildSearchWhere(filter domain.SearchFilter) (string, []any) {
	conditions := []string{"is_archived = false"}
	var args []any

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.SellerID != uuid.Nil {
		args = append(args, filter.SellerID)
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (*domain.Product, error) {
	var product domain.Product
	err := scanner.Scan(
		&product.ID, &product.SellerID, &product.Name, &product.Description,
		&product.Price, &product.Stock, &product.IsArchived,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
