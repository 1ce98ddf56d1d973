package services

import (
	"context"

	"dealdesk/internal/domain/models"
)

// DealAuthorizer decides whether a principal may read or mutate a deal.
//
// Bank users may read and write deals owned by their bank. Clients may read
// the deal they are linked to. Investors may read deals they were granted.
type DealAuthorizer interface {
	// CanReadDeal returns domain.ErrForbidden when the principal may not read the deal
	CanReadDeal(ctx context.Context, p *models.Principal, dealID string) error

	// CanWriteDeal returns domain.ErrForbidden unless the principal is staff of the owning bank
	CanWriteDeal(ctx context.Context, p *models.Principal, dealID string) error
}
