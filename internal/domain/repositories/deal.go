package repositories

import (
	"context"

	"dealdesk/internal/domain/models"
)

// DealRepository defines the deal lookups the access layer and seeding need
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error

	// GetByID returns domain.ErrNotFound when the deal does not exist
	GetByID(ctx context.Context, id string) (*models.Deal, error)

	// GrantInvestor gives an investor organization read access to a deal
	GrantInvestor(ctx context.Context, dealID, investorID string) error

	// HasInvestor reports whether the investor organization was granted access
	HasInvestor(ctx context.Context, dealID, investorID string) (bool, error)
}
