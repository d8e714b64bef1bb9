package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects.
// Every read and write is scoped by owner_id.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
p.id, p.title, p.summary, p.keywords, p.status, p.proponent_entity,
p.start_date, p.end_date, p.budget, p.is_public, p.owner_id, p.created_at, p.updated_at,
(SELECT count(*) FROM products pr WHERE pr.project_id = p.id),
(SELECT count(*) FROM attachments a WHERE a.project_id = p.id)`

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p          domain.Project
		keywords   pq.StringArray
		status     string
		start, end sql.NullTime
		budget     sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Summary, &keywords, &status, &p.ProponentEntity,
		&start, &end, &budget, &p.IsPublic, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&p.Counts.Products, &p.Counts.Attachments,
	)
	if err != nil {
		return nil, err
	}
	p.Keywords = []string(keywords)
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	p.Status = domain.Status(status)
	p.StartDate = datePtr(start)
	p.EndDate = datePtr(end)
	p.Budget = floatPtr(budget)
	p.Products = []domain.Product{}
	p.Attachments = []domain.Attachment{}
	return &p, nil
}

// Create inserts a new project for ownerID with status PROPOSED.
func (r *ProjectRepository) Create(ctx context.Context, ownerID string, in domain.NewProject) (*domain.Project, error) {
	p := &domain.Project{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Summary:         in.Summary,
		Keywords:        in.Keywords,
		Status:          domain.StatusProposed,
		ProponentEntity: in.ProponentEntity,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Budget:          in.Budget,
		IsPublic:        in.IsPublic,
		OwnerID:         ownerID,
		Products:        []domain.Product{},
		Attachments:     []domain.Attachment{},
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}

	const q = `
INSERT INTO projects (id, title, summary, keywords, status, proponent_entity,
                      start_date, end_date, budget, is_public, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q,
		p.ID, p.Title, p.Summary, pq.Array(p.Keywords), string(p.Status), p.ProponentEntity,
		nullDate(p.StartDate), nullDate(p.EndDate), nullFloat(p.Budget), p.IsPublic, p.OwnerID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetOwned returns the project only when ownerID owns it.
func (r *ProjectRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects p
WHERE p.id = $1 AND p.owner_id = $2;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListByOwner returns all projects of ownerID, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects p
WHERE p.owner_id = $1
ORDER BY p.created_at DESC;`

	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the non-nil fields of patch. It returns domain.ErrNotFound when
// the project does not exist or is not owned by ownerID.
func (r *ProjectRepository) Update(ctx context.Context, id, ownerID string, patch domain.ProjectPatch) error {
	var status sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}
	var isPublic sql.NullBool
	if patch.IsPublic != nil {
		isPublic = sql.NullBool{Bool: *patch.IsPublic, Valid: true}
	}
	var keywords any
	if patch.Keywords != nil {
		keywords = pq.Array(patch.Keywords)
	}

	const q = `
UPDATE projects
SET title            = COALESCE($3, title),
    summary          = COALESCE($4, summary),
    keywords         = COALESCE($5::text[], keywords),
    status           = COALESCE($6, status),
    proponent_entity = COALESCE($7, proponent_entity),
    start_date       = COALESCE($8::date, start_date),
    end_date         = COALESCE($9::date, end_date),
    budget           = COALESCE($10::numeric, budget),
    is_public        = COALESCE($11::boolean, is_public),
    updated_at       = $12
WHERE id = $1 AND owner_id = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, ownerID,
		nullStr(patch.Title), nullStr(patch.Summary), keywords, status, nullStr(patch.ProponentEntity),
		nullDate(patch.StartDate), nullDate(patch.EndDate), nullFloat(patch.Budget), isPublic,
		time.Now().UTC(),
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

// Delete removes the project; products and attachments go with it through
// ON DELETE CASCADE. It returns false when nothing owned by ownerID matched.
func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `DELETE FROM projects WHERE id = $1 AND owner_id = $2;`
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

// StorageKeys lists the blob keys of every attachment that a project delete cascades to.
func (r *ProjectRepository) StorageKeys(ctx context.Context, id string) ([]string, error) {
	const q = `
SELECT a.storage_key
FROM attachments a
LEFT JOIN products pr ON pr.id = a.product_id
WHERE a.project_id = $1 OR pr.project_id = $1;
`
	return queryKeys(ctx, r.db, q, id)
}

func queryKeys(ctx context.Context, db *sql.DB, q string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
