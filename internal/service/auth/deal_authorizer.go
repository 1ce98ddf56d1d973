package auth

import (
	"context"
	"fmt"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/repositories"
)

// RoleBasedAuthorizer implements services.DealAuthorizer from the caller's
// role and organization.
//
// A bank user may read and write the deals of their bank. A client may read
// the deal it is linked to. An investor may read deals it was granted.
type RoleBasedAuthorizer struct {
	dealRepo repositories.DealRepository
}

// NewRoleBasedAuthorizer creates a new role-based authorizer
func NewRoleBasedAuthorizer(dealRepo repositories.DealRepository) *RoleBasedAuthorizer {
	return &RoleBasedAuthorizer{dealRepo: dealRepo}
}

// CanReadDeal checks read access to a deal
func (a *RoleBasedAuthorizer) CanReadDeal(ctx context.Context, p *models.Principal, dealID string) error {
	deal, err := a.loadDeal(ctx, p, dealID)
	if err != nil {
		return err
	}

	switch p.Role {
	case models.RoleBank:
		if deal.BankID == p.OrgID {
			return nil
		}
	case models.RoleClient:
		if deal.ClientID != nil && *deal.ClientID == p.OrgID {
			return nil
		}
	case models.RoleInvestor:
		granted, err := a.dealRepo.HasInvestor(ctx, dealID, p.OrgID)
		if err != nil {
			return fmt.Errorf("check investor access: %w", err)
		}
		if granted {
			return nil
		}
	}

	return fmt.Errorf("access denied to deal %s: %w", dealID, domain.ErrForbidden)
}

// CanWriteDeal checks that the caller is staff of the bank owning the deal
func (a *RoleBasedAuthorizer) CanWriteDeal(ctx context.Context, p *models.Principal, dealID string) error {
	deal, err := a.loadDeal(ctx, p, dealID)
	if err != nil {
		return err
	}

	if p.Role != models.RoleBank || deal.BankID != p.OrgID {
		return fmt.Errorf("write access denied to deal %s: %w", dealID, domain.ErrForbidden)
	}
	return nil
}

func (a *RoleBasedAuthorizer) loadDeal(ctx context.Context, p *models.Principal, dealID string) (*models.Deal, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	deal, err := a.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("get deal for auth: %w", err)
	}
	return deal, nil
}
