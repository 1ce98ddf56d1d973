package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDealRepository implements the DealRepository interface
type PostgresDealRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDealRepository creates a new deal repository
func NewDealRepository(config *RepositoryConfig) repositories.DealRepository {
	return &PostgresDealRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a deal
func (r *PostgresDealRepository) Create(ctx context.Context, deal *models.Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, bank_id, client_id, name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, r.tables.Deals)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		deal.ID,
		deal.BankID,
		deal.ClientID,
		deal.Name,
		deal.Status,
		deal.CreatedAt,
	).Scan(&deal.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("deal %s already exists", deal.ID),
				ResourceType: "deal",
				ResourceID:   deal.ID,
			}
		}
		return fmt.Errorf("create deal: %w", err)
	}

	return nil
}

// GetByID retrieves a deal by ID
func (r *PostgresDealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("deal %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT id, bank_id, client_id, name, status, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Deals)

	var deal models.Deal
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&deal.ID,
		&deal.BankID,
		&deal.ClientID,
		&deal.Name,
		&deal.Status,
		&deal.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("deal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get deal: %w", err)
	}

	return &deal, nil
}

// GrantInvestor gives an investor organization read access to a deal
func (r *PostgresDealRepository) GrantInvestor(ctx context.Context, dealID, investorID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (deal_id, investor_id)
		VALUES ($1, $2)
		ON CONFLICT (deal_id, investor_id) DO NOTHING
	`, r.tables.DealInvestors)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, dealID, investorID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("deal %s: %w", dealID, domain.ErrNotFound)
		}
		return fmt.Errorf("grant investor: %w", err)
	}
	return nil
}

// HasInvestor reports whether the investor organization was granted access
func (r *PostgresDealRepository) HasInvestor(ctx context.Context, dealID, investorID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE deal_id = $1 AND investor_id = $2)
	`, r.tables.DealInvestors)

	var ok bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, dealID, investorID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check investor grant: %w", err)
	}
	return ok, nil
}
