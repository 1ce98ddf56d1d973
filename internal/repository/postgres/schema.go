package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunSchema creates tables and indexes if they don't exist
func RunSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Deals + ` (
			id UUID PRIMARY KEY,
			bank_id TEXT NOT NULL,
			client_id TEXT,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pitch',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.DealInvestors + ` (
			deal_id UUID NOT NULL REFERENCES ` + tables.Deals + `(id) ON DELETE CASCADE,
			investor_id TEXT NOT NULL,
			granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (deal_id, investor_id)
		)`,
		// parent_id is RESTRICT: subtrees are deleted explicitly, children first.
		// Sibling names are deliberately not unique.
		`CREATE TABLE IF NOT EXISTS ` + tables.Nodes + ` (
			id UUID PRIMARY KEY,
			deal_id UUID NOT NULL REFERENCES ` + tables.Deals + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Nodes + `(id) ON DELETE RESTRICT,
			name VARCHAR(255) NOT NULL CHECK (name <> ''),
			kind TEXT NOT NULL CHECK (kind IN ('folder', 'file')),
			storage_path TEXT,
			byte_size BIGINT CHECK (byte_size >= 0),
			media_type TEXT,
			uploaded_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK ((kind = 'file') = (storage_path IS NOT NULL AND byte_size IS NOT NULL AND media_type IS NOT NULL))
		)`,
		// uploaded_node_id SET NULL backs up the explicit unlink done in the delete transaction
		`CREATE TABLE IF NOT EXISTS ` + tables.Requirements + ` (
			id UUID PRIMARY KEY,
			deal_id UUID NOT NULL REFERENCES ` + tables.Deals + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_required BOOLEAN NOT NULL DEFAULT TRUE,
			uploaded_node_id UUID REFERENCES ` + tables.Nodes + `(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `nodes_deal_parent ON ` + tables.Nodes + `(deal_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `nodes_parent ON ` + tables.Nodes + `(parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `requirements_deal_category_name ON ` + tables.Requirements + `(deal_id, category, name)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `requirements_node ON ` + tables.Requirements + `(uploaded_node_id) WHERE uploaded_node_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables in reverse dependency order
func DropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{
		tables.Requirements,
		tables.Nodes,
		tables.DealInvestors,
		tables.Deals,
	} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearDealData removes a deal's requirements and nodes, keeping the deal
func ClearDealData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, dealID string) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Requirements+" WHERE deal_id = $1", dealID); err != nil {
		return fmt.Errorf("clear requirements: %w", err)
	}
	// parent_id is RESTRICT, so detach before bulk delete
	if _, err := pool.Exec(ctx, "UPDATE "+tables.Nodes+" SET parent_id = NULL WHERE deal_id = $1", dealID); err != nil {
		return fmt.Errorf("detach nodes: %w", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Nodes+" WHERE deal_id = $1", dealID); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	return nil
}
