package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrations lists the schema statements in apply order. Every statement is idempotent.
var Migrations = []string{
	createUsersTable,
	createProductTypesTable,
	createProjectsTable,
	createProductsTable,
	createAttachmentsTable,
	createIndexes,
}

// RunMigrations applies every statement in order and stops at the first failure.
func RunMigrations(ctx context.Context, db Execer) error {
	log := zerolog.Ctx(ctx)
	for i, m := range Migrations {
		log.Debug().Int("step", i+1).Int("total", len(Migrations)).Msg("running migration")
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Info().Int("count", len(Migrations)).Msg("migrations applied")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  firebase_uid TEXT PRIMARY KEY,
  email        TEXT,
  display_name TEXT,
  photo_url    TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createProductTypesTable = `
CREATE TABLE IF NOT EXISTS product_types (
  id          UUID PRIMARY KEY,
  code        TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  quality     TEXT NOT NULL,
  category    TEXT NOT NULL
);
`

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  id               UUID PRIMARY KEY,
  title            TEXT NOT NULL,
  summary          TEXT NOT NULL,
  keywords         TEXT[] NOT NULL DEFAULT '{}',
  status           TEXT NOT NULL DEFAULT 'PROPOSED'
                   CHECK (status IN ('PROPOSED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
  proponent_entity TEXT NOT NULL,
  start_date       DATE,
  end_date         DATE,
  budget           DOUBLE PRECISION CHECK (budget IS NULL OR budget >= 0),
  is_public        BOOLEAN NOT NULL DEFAULT FALSE,
  owner_id         TEXT NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
  id              UUID PRIMARY KEY,
  title           TEXT NOT NULL,
  summary         TEXT NOT NULL,
  description     TEXT,
  product_url     TEXT,
  product_type_id UUID NOT NULL REFERENCES product_types(id) ON DELETE RESTRICT,
  project_id      UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  is_public       BOOLEAN NOT NULL DEFAULT FALSE,
  owner_id        TEXT NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createAttachmentsTable = `
CREATE TABLE IF NOT EXISTS attachments (
  id          UUID PRIMARY KEY,
  url         TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  file_name   TEXT NOT NULL,
  file_size   BIGINT NOT NULL CHECK (file_size > 0),
  mime_type   TEXT NOT NULL,
  project_id  UUID REFERENCES projects(id) ON DELETE CASCADE,
  product_id  UUID REFERENCES products(id) ON DELETE CASCADE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CONSTRAINT attachments_single_parent CHECK (num_nonnulls(project_id, product_id) = 1)
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_projects_public ON projects(created_at DESC) WHERE is_public;
CREATE INDEX IF NOT EXISTS idx_projects_keywords ON projects USING GIN (keywords);
CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_products_project ON products(project_id);
CREATE INDEX IF NOT EXISTS idx_attachments_project ON attachments(project_id);
CREATE INDEX IF NOT EXISTS idx_attachments_product ON attachments(product_id);
`
