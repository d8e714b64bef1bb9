package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

const attachmentColumns = `a.id, a.url, a.storage_key, a.file_name, a.file_size, a.mime_type, a.project_id, a.product_id, a.created_at`

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var (
		a                    domain.Attachment
		projectID, productID sql.NullString
	)
	err := row.Scan(&a.ID, &a.URL, &a.StorageKey, &a.FileName, &a.FileSize, &a.MimeType, &projectID, &productID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ProjectID = strPtr(projectID)
	a.ProductID = strPtr(productID)
	return &a, nil
}

// Create records an uploaded file against exactly one parent.
func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const q = `
INSERT INTO attachments (id, url, storage_key, file_name, file_size, mime_type, project_id, product_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at;
`
	return r.db.QueryRowContext(ctx, q,
		a.ID, a.URL, a.StorageKey, a.FileName, a.FileSize, a.MimeType,
		nullStr(a.ProjectID), nullStr(a.ProductID),
	).Scan(&a.CreatedAt)
}

// GetOwned returns the attachment when its parent project or product belongs to ownerID.
func (r *AttachmentRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Attachment, error) {
	const q = `
SELECT ` + attachmentColumns + `
FROM attachments a
LEFT JOIN projects p ON p.id = a.project_id
LEFT JOIN products pr ON pr.id = a.product_id
WHERE a.id = $1 AND (p.owner_id = $2 OR pr.owner_id = $2);
`
	a, err := scanAttachment(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM attachments WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id)
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

// ListByProjects returns attachments hanging directly off the given projects.
func (r *AttachmentRepository) ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Attachment, error) {
	const q = `
SELECT ` + attachmentColumns + `
FROM attachments a
WHERE a.project_id::text = ANY($1)
ORDER BY a.created_at DESC;
`
	return r.list(ctx, q, projectIDs)
}

// ListByProducts returns attachments of the given products.
func (r *AttachmentRepository) ListByProducts(ctx context.Context, productIDs []string) ([]domain.Attachment, error) {
	const q = `
SELECT ` + attachmentColumns + `
FROM attachments a
WHERE a.product_id::text = ANY($1)
ORDER BY a.created_at DESC;
`
	return r.list(ctx, q, productIDs)
}

func (r *AttachmentRepository) list(ctx context.Context, q string, ids []string) ([]domain.Attachment, error) {
	if len(ids) == 0 {
		return []domain.Attachment{}, nil
	}
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Attachment, 0, 16)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
