package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelect = `
SELECT pr.id, pr.title, pr.summary, pr.description, pr.product_url, pr.product_type_id, pr.project_id,
       pr.is_public, pr.owner_id, pr.created_at, pr.updated_at,
       pt.id, pt.code, pt.description, pt.quality, pt.category,
       p.id, p.title, p.is_public
FROM products pr
JOIN product_types pt ON pt.id = pr.product_type_id
JOIN projects p ON p.id = pr.project_id`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		pr          domain.Product
		pt          domain.ProductType
		ref         domain.ProjectRef
		description sql.NullString
		productURL  sql.NullString
	)
	err := row.Scan(
		&pr.ID, &pr.Title, &pr.Summary, &description, &productURL, &pr.ProductTypeID, &pr.ProjectID,
		&pr.IsPublic, &pr.OwnerID, &pr.CreatedAt, &pr.UpdatedAt,
		&pt.ID, &pt.Code, &pt.Description, &pt.Quality, &pt.Category,
		&ref.ID, &ref.Title, &ref.IsPublic,
	)
	if err != nil {
		return nil, err
	}
	pr.Description = strPtr(description)
	pr.ProductURL = strPtr(productURL)
	pr.ProductType = &pt
	pr.Project = &ref
	pr.Attachments = []domain.Attachment{}
	return &pr, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, 16)
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a product for ownerID. Parent ownership and the product type
// are checked by the caller.
func (r *ProductRepository) Create(ctx context.Context, ownerID string, in domain.NewProduct) (string, error) {
	id := uuid.NewString()
	const q = `
INSERT INTO products (id, title, summary, description, product_url, product_type_id, project_id, is_public, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.db.ExecContext(ctx, q,
		id, in.Title, in.Summary, nullStr(in.Description), nullStr(in.ProductURL),
		in.ProductTypeID, in.ProjectID, in.IsPublic, ownerID,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetOwned returns the product with its type and parent summary.
func (r *ProductRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Product, error) {
	q := productSelect + `
WHERE pr.id = $1 AND pr.owner_id = $2;`

	pr, err := scanProduct(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		return nil, notFound(err)
	}
	return pr, nil
}

// ListByOwner returns the owner's products, optionally narrowed to one project.
func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID, projectID string) ([]domain.Product, error) {
	q := productSelect + `
WHERE pr.owner_id = $1 AND ($2::text = '' OR pr.project_id::text = $2)
ORDER BY pr.created_at DESC;`

	return r.queryProducts(ctx, q, ownerID, projectID)
}

// ListByProjects returns the products of the given projects, newest first.
// With publicOnly only products flagged public are returned.
func (r *ProductRepository) ListByProjects(ctx context.Context, projectIDs []string, publicOnly bool) ([]domain.Product, error) {
	if len(projectIDs) == 0 {
		return []domain.Product{}, nil
	}
	q := productSelect + `
WHERE pr.project_id::text = ANY($1) AND (NOT $2::boolean OR pr.is_public)
ORDER BY pr.created_at DESC;`

	return r.queryProducts(ctx, q, pq.Array(projectIDs), publicOnly)
}

// Update applies the non-nil fields of patch. An empty description or
// product_url clears the column.
func (r *ProductRepository) Update(ctx context.Context, id, ownerID string, patch domain.ProductPatch) error {
	var isPublic sql.NullBool
	if patch.IsPublic != nil {
		isPublic = sql.NullBool{Bool: *patch.IsPublic, Valid: true}
	}

	const q = `
UPDATE products
SET title           = COALESCE($3, title),
    summary         = COALESCE($4, summary),
    description     = CASE WHEN $5::text IS NULL THEN description ELSE NULLIF($5, '') END,
    product_url     = CASE WHEN $6::text IS NULL THEN product_url ELSE NULLIF($6, '') END,
    product_type_id = COALESCE($7::uuid, product_type_id),
    project_id      = COALESCE($8::uuid, project_id),
    is_public       = COALESCE($9::boolean, is_public),
    updated_at      = $10
WHERE id = $1 AND owner_id = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, ownerID,
		nullStr(patch.Title), nullStr(patch.Summary), nullStr(patch.Description), nullStr(patch.ProductURL),
		nullStr(patch.ProductTypeID), nullStr(patch.ProjectID), isPublic, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the product and, by cascade, its attachments.
func (r *ProductRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `DELETE FROM products WHERE id = $1 AND owner_id = $2;`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StorageKeys lists the blob keys of the product's attachments.
func (r *ProductRepository) StorageKeys(ctx context.Context, id string) ([]string, error) {
	const q = `SELECT storage_key FROM attachments WHERE product_id = $1;`
	return queryKeys(ctx, r.db, q, id)
}
