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

const requirementColumns = `id, deal_id, name, category, description, is_required, uploaded_node_id, created_at, updated_at`

// PostgresRequirementRepository implements the RequirementRepository interface
type PostgresRequirementRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(config *postgres.RepositoryConfig) docsysRepo.RequirementRepository {
	return &PostgresRequirementRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a requirement
func (r *PostgresRequirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, r.tables.Requirements, requirementColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		req.ID,
		req.DealID,
		req.Name,
		req.Category,
		req.Description,
		req.IsRequired,
		req.UploadedNodeID,
		req.CreatedAt,
		req.UpdatedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("requirement %q already exists in category %q", req.Name, req.Category),
				ResourceType: "requirement",
				ResourceID:   req.ID,
			}
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("deal or node of requirement %q: %w", req.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("create requirement: %w", err)
	}

	req.RefreshStatus()
	return nil
}

// GetByID retrieves a requirement by ID
func (r *PostgresRequirementRepository) GetByID(ctx context.Context, id string) (*models.Requirement, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate retrieves a requirement and row-locks it for the surrounding transaction
func (r *PostgresRequirementRepository) GetForUpdate(ctx context.Context, id string) (*models.Requirement, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PostgresRequirementRepository) get(ctx context.Context, id, lockClause string) (*models.Requirement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1%s`, requirementColumns, r.tables.Requirements, lockClause)

	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanRequirement(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get requirement: %w", err)
	}

	return req, nil
}

// Update persists mutable requirement fields
func (r *PostgresRequirementRepository) Update(ctx context.Context, req *models.Requirement) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, category = $2, description = $3, is_required = $4, uploaded_node_id = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		req.Name,
		req.Category,
		req.Description,
		req.IsRequired,
		req.UploadedNodeID,
		req.UpdatedAt,
		req.ID,
	)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("requirement %q already exists in category %q", req.Name, req.Category),
				ResourceType: "requirement",
				ResourceID:   req.ID,
			}
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("uploaded node of requirement %s: %w", req.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update requirement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("requirement %s: %w", req.ID, domain.ErrNotFound)
	}

	req.RefreshStatus()
	return nil
}

// Delete removes a requirement
func (r *PostgresRequirementRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByDeal lists requirements ordered by category then name.
// COLLATE "C" keeps the ordering byte-wise regardless of database locale.
func (r *PostgresRequirementRepository) ListByDeal(ctx context.Context, dealID string) ([]models.Requirement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE deal_id = $1
		ORDER BY category COLLATE "C" ASC, name COLLATE "C" ASC, id ASC
	`, requirementColumns, r.tables.Requirements)

	return r.queryRequirements(ctx, "list requirements", query, dealID)
}

// ListByUploadedNode lists requirements linked to a node
func (r *PostgresRequirementRepository) ListByUploadedNode(ctx context.Context, nodeID string) ([]models.Requirement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE uploaded_node_id = $1
		ORDER BY id ASC
		FOR UPDATE
	`, requirementColumns, r.tables.Requirements)

	return r.queryRequirements(ctx, "list requirements by node", query, nodeID)
}

// Exists reports whether a requirement with this category and name exists in the deal
func (r *PostgresRequirementRepository) Exists(ctx context.Context, dealID, category, name string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE deal_id = $1 AND category = $2 AND name = $3
		)
	`, r.tables.Requirements)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, dealID, category, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check requirement exists: %w", err)
	}
	return exists, nil
}

// LockDeal takes a transaction-scoped advisory lock on the deal's checklist.
// Concurrent seeds queue here, so the later one sees the earlier one's rows
// instead of colliding on the unique index.
func (r *PostgresRequirementRepository) LockDeal(ctx context.Context, dealID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "requirements:"+dealID); err != nil {
		return fmt.Errorf("lock requirements of deal %s: %w", dealID, err)
	}
	return nil
}

func (r *PostgresRequirementRepository) queryRequirements(ctx context.Context, op, query string, args ...any) ([]models.Requirement, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reqs := make([]models.Requirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		reqs = append(reqs, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}

	return reqs, nil
}

func scanRequirement(row pgx.Row) (*models.Requirement, error) {
	var req models.Requirement
	err := row.Scan(
		&req.ID,
		&req.DealID,
		&req.Name,
		&req.Category,
		&req.Description,
		&req.IsRequired,
		&req.UploadedNodeID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.RefreshStatus()
	return &req, nil
}
