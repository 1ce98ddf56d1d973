package auth

import (
	"context"
	"testing"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleBasedAuthorizer(t *testing.T) {
	ctx := context.Background()
	deals := memory.NewDealRepository(memory.NewStore())

	client := "client-1"
	deal := &models.Deal{BankID: "bank-1", ClientID: &client, Name: "Project Atlas", Status: models.DealStatusDiligence}
	require.NoError(t, deals.Create(ctx, deal))
	require.NoError(t, deals.GrantInvestor(ctx, deal.ID, "fund-1"))

	authz := NewRoleBasedAuthorizer(deals)

	tests := []struct {
		name      string
		principal *models.Principal
		readErr   error
		writeErr  error
	}{
		{"owning bank", &models.Principal{UserID: "u1", Role: models.RoleBank, OrgID: "bank-1"}, nil, nil},
		{"other bank", &models.Principal{UserID: "u2", Role: models.RoleBank, OrgID: "bank-2"}, domain.ErrForbidden, domain.ErrForbidden},
		{"linked client", &models.Principal{UserID: "u3", Role: models.RoleClient, OrgID: "client-1"}, nil, domain.ErrForbidden},
		{"other client", &models.Principal{UserID: "u4", Role: models.RoleClient, OrgID: "client-2"}, domain.ErrForbidden, domain.ErrForbidden},
		{"granted investor", &models.Principal{UserID: "u5", Role: models.RoleInvestor, OrgID: "fund-1"}, nil, domain.ErrForbidden},
		{"other investor", &models.Principal{UserID: "u6", Role: models.RoleInvestor, OrgID: "fund-2"}, domain.ErrForbidden, domain.ErrForbidden},
		{"investor with bank org id", &models.Principal{UserID: "u7", Role: models.RoleInvestor, OrgID: "bank-1"}, domain.ErrForbidden, domain.ErrForbidden},
		{"anonymous", nil, domain.ErrUnauthorized, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanReadDeal(ctx, tt.principal, deal.ID)
			if tt.readErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.readErr)
			}

			err = authz.CanWriteDeal(ctx, tt.principal, deal.ID)
			if tt.writeErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.writeErr)
			}
		})
	}
}

func TestRoleBasedAuthorizer_UnknownDeal(t *testing.T) {
	authz := NewRoleBasedAuthorizer(memory.NewDealRepository(memory.NewStore()))
	banker := &models.Principal{UserID: "u1", Role: models.RoleBank, OrgID: "bank-1"}

	assert.ErrorIs(t, authz.CanReadDeal(context.Background(), banker, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, authz.CanWriteDeal(context.Background(), banker, "missing"), domain.ErrNotFound)
}
