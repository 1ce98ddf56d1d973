package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"dealdesk/internal/domain"
	models "dealdesk/internal/domain/models/docsystem"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	"dealdesk/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const nodeColumns = `id, deal_id, parent_id, name, kind, storage_path, byte_size, media_type, uploaded_by, created_at, updated_at`

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) docsysRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Nodes, nodeColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		node.ID,
		node.DealID,
		node.ParentID,
		node.Name,
		node.Kind,
		node.StoragePath,
		node.ByteSize,
		node.MediaType,
		node.UploadedBy,
		node.CreatedAt,
		node.UpdatedAt,
	).Scan(&node.CreatedAt, &node.UpdatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("node %s already exists", node.ID),
				ResourceType: "node",
				ResourceID:   node.ID,
			}
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("parent of node '%s': %w", node.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create node: %w", err)
	}

	return nil
}

// GetByID retrieves a node by ID
func (r *PostgresNodeRepository) GetByID(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, nodeColumns, r.tables.Nodes)
	return r.getOne(ctx, id, query)
}

// GetForUpdate retrieves a node and holds a row lock until the transaction ends.
// Outside a transaction the lock is released immediately.
func (r *PostgresNodeRepository) GetForUpdate(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, nodeColumns, r.tables.Nodes)
	return r.getOne(ctx, id, query)
}

func (r *PostgresNodeRepository) getOne(ctx context.Context, id, query string) (*models.Node, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}

	return node, nil
}

// Update persists mutable node fields
func (r *PostgresNodeRepository) Update(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, storage_path = $3, byte_size = $4, media_type = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		node.ParentID,
		node.Name,
		node.StoragePath,
		node.ByteSize,
		node.MediaType,
		node.UpdatedAt,
		node.ID,
	)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent of node %s: %w", node.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update node: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single node. parent_id is ON DELETE RESTRICT, so a
// folder that still has children is rejected by the database.
func (r *PostgresNodeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotEmptyError{
				Message: fmt.Sprintf("folder %s is not empty", id),
				NodeID:  id,
			}
		}
		return fmt.Errorf("delete node: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists direct children, folders first, then most recently updated
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, dealID string, parentID *string) ([]models.Node, error) {
	var query string
	var args []any

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE deal_id = $1 AND parent_id IS NULL
			ORDER BY (kind = 'folder') DESC, updated_at DESC, id ASC
		`, nodeColumns, r.tables.Nodes)
		args = append(args, dealID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE deal_id = $1 AND parent_id = $2
			ORDER BY (kind = 'folder') DESC, updated_at DESC, id ASC
		`, nodeColumns, r.tables.Nodes)
		args = append(args, dealID, *parentID)
	}

	return r.queryNodes(ctx, "list node children", query, args...)
}

// CountChildren counts direct children of a node
func (r *PostgresNodeRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Nodes)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count node children: %w", err)
	}
	return count, nil
}

// ListByDeal retrieves every node of a deal (flat list)
func (r *PostgresNodeRepository) ListByDeal(ctx context.Context, dealID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE deal_id = $1
		ORDER BY created_at ASC, id ASC
	`, nodeColumns, r.tables.Nodes)

	return r.queryNodes(ctx, "list deal nodes", query, dealID)
}

// LockDeal takes a transaction-scoped advisory lock keyed by the deal id.
// Moves and deletes in the same deal queue behind each other, so a cycle
// check always sees a parent chain no concurrent move is rewriting.
func (r *PostgresNodeRepository) LockDeal(ctx context.Context, dealID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "nodes:"+dealID); err != nil {
		return fmt.Errorf("lock deal %s: %w", dealID, err)
	}
	return nil
}

func (r *PostgresNodeRepository) queryNodes(ctx context.Context, op, query string, args ...any) ([]models.Node, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	nodes := make([]models.Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

func scanNode(row pgx.Row) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.DealID,
		&node.ParentID,
		&node.Name,
		&node.Kind,
		&node.StoragePath,
		&node.ByteSize,
		&node.MediaType,
		&node.UploadedBy,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}
