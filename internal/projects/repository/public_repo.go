package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// PublicRepository serves the unauthenticated listing. It only ever reads
// projects flagged public.
type PublicRepository struct {
	db *sql.DB
}

func NewPublicRepository(db *sql.DB) *PublicRepository {
	return &PublicRepository{db: db}
}

// $1 is the raw search term, $2 its ILIKE pattern.
const publicFilter = `
WHERE p.is_public
  AND ($1::text = ''
       OR p.title ILIKE $2 ESCAPE '\'
       OR p.summary ILIKE $2 ESCAPE '\'
       OR EXISTS (SELECT 1 FROM unnest(p.keywords) k WHERE lower(k) = lower($1)))`

// likePattern wraps term in wildcards with LIKE metacharacters escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// Count returns the number of public projects matching search.
func (r *PublicRepository) Count(ctx context.Context, search string) (int, error) {
	q := `SELECT count(*) FROM projects p` + publicFilter + `;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, search, likePattern(search)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Page returns up to take public projects, newest first, skipping offset.
// Products are attached by the caller.
func (r *PublicRepository) Page(ctx context.Context, search string, take, offset int) ([]domain.PublicProject, error) {
	q := `
SELECT p.id, p.title, p.summary, p.keywords, p.status, p.proponent_entity,
       p.start_date, p.end_date, p.budget, p.created_at, p.updated_at, u.display_name,
       (SELECT count(*) FROM products pr WHERE pr.project_id = p.id),
       (SELECT count(*) FROM attachments a WHERE a.project_id = p.id)
FROM projects p
LEFT JOIN users u ON u.firebase_uid = p.owner_id` + publicFilter + `
ORDER BY p.created_at DESC
LIMIT $3 OFFSET $4;`

	rows, err := r.db.QueryContext(ctx, q, search, likePattern(search), take, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PublicProject, 0, take)
	for rows.Next() {
		var (
			p          domain.PublicProject
			keywords   pq.StringArray
			status     string
			start, end sql.NullTime
			budget     sql.NullFloat64
			creator    sql.NullString
		)
		err := rows.Scan(
			&p.ID, &p.Title, &p.Summary, &keywords, &status, &p.ProponentEntity,
			&start, &end, &budget, &p.CreatedAt, &p.UpdatedAt, &creator,
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
		p.CreatorName = strPtr(creator)
		p.Products = []domain.PublicProduct{}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
