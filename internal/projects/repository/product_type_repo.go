package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// ProductTypeRepository stores the shared product type catalogue.
type ProductTypeRepository struct {
	db *sql.DB
}

func NewProductTypeRepository(db *sql.DB) *ProductTypeRepository {
	return &ProductTypeRepository{db: db}
}

// Create inserts a product type. A duplicate code yields domain.ErrConflict.
func (r *ProductTypeRepository) Create(ctx context.Context, in domain.NewProductType) (*domain.ProductType, error) {
	pt := &domain.ProductType{
		ID:          uuid.NewString(),
		Code:        in.Code,
		Description: in.Description,
		Quality:     in.Quality,
		Category:    in.Category,
	}
	const q = `
INSERT INTO product_types (id, code, description, quality, category)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := r.db.ExecContext(ctx, q, pt.ID, pt.Code, pt.Description, pt.Quality, pt.Category); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return pt, nil
}

// Upsert inserts or refreshes a product type keyed by code.
func (r *ProductTypeRepository) Upsert(ctx context.Context, in domain.NewProductType) (*domain.ProductType, error) {
	const q = `
INSERT INTO product_types (id, code, description, quality, category)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (code) DO UPDATE
SET description = excluded.description,
    quality     = excluded.quality,
    category    = excluded.category
RETURNING id;
`
	pt := &domain.ProductType{
		Code:        in.Code,
		Description: in.Description,
		Quality:     in.Quality,
		Category:    in.Category,
	}
	err := r.db.QueryRowContext(ctx, q, uuid.NewString(), in.Code, in.Description, in.Quality, in.Category).Scan(&pt.ID)
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func (r *ProductTypeRepository) Get(ctx context.Context, id string) (*domain.ProductType, error) {
	const q = `
SELECT id, code, description, quality, category
FROM product_types
WHERE id = $1;
`
	var pt domain.ProductType
	err := r.db.QueryRowContext(ctx, q, id).Scan(&pt.ID, &pt.Code, &pt.Description, &pt.Quality, &pt.Category)
	if err != nil {
		return nil, notFound(err)
	}
	return &pt, nil
}

// List returns every product type ordered by category, then code.
func (r *ProductTypeRepository) List(ctx context.Context) ([]domain.ProductType, error) {
	const q = `
SELECT id, code, description, quality, category
FROM product_types
ORDER BY category ASC, code ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProductType, 0, 32)
	for rows.Next() {
		var pt domain.ProductType
		if err := rows.Scan(&pt.ID, &pt.Code, &pt.Description, &pt.Quality, &pt.Category); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
