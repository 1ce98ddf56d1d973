// Package seed creates a demo deal with a starter folder structure and the
// standard requirement checklist. Used by cmd/seed and by the server when it
// runs on the memory backend.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/repositories"
	docsysSvc "dealdesk/internal/domain/services/docsystem"
)

// Demo organizations and the fixed demo deal
const (
	DemoDealID     = "0b7f3c1e-5a2d-4e8f-9c6b-1d2e3f4a5b6c"
	DemoBankID     = "demo-bank"
	DemoClientID   = "demo-client"
	DemoInvestorID = "demo-fund"
	DemoUserID     = "demo-banker"
)

// DemoPrincipals returns one principal per role for signing local dev tokens
func DemoPrincipals() []*models.Principal {
	return []*models.Principal{
		{UserID: DemoUserID, Role: models.RoleBank, OrgID: DemoBankID},
		{UserID: "demo-client-user", Role: models.RoleClient, OrgID: DemoClientID},
		{UserID: "demo-investor-user", Role: models.RoleInvestor, OrgID: DemoInvestorID},
	}
}

// demoFolders is the starter data room layout: parent path -> folder names
var demoFolders = []struct {
	parent string
	name   string
}{
	{"", "Corporate"},
	{"", "Financial"},
	{"Financial", "Audits"},
	{"", "Legal"},
	{"Legal", "Contracts"},
	{"", "Marketing"},
}

// Seeder creates demo data through the services, so every invariant holds
type Seeder struct {
	deals   repositories.DealRepository
	tree    docsysSvc.TreeService
	tracker docsysSvc.RequirementTracker
	logger  *slog.Logger
}

// NewSeeder creates a new demo seeder
func NewSeeder(deals repositories.DealRepository, tree docsysSvc.TreeService, tracker docsysSvc.RequirementTracker, logger *slog.Logger) *Seeder {
	return &Seeder{
		deals:   deals,
		tree:    tree,
		tracker: tracker,
		logger:  logger,
	}
}

// SeedDemo creates the demo deal once. Running it again only tops up the
// requirement checklist.
func (s *Seeder) SeedDemo(ctx context.Context) (*models.Deal, error) {
	deal, err := s.deals.GetByID(ctx, DemoDealID)
	switch {
	case err == nil:
		s.logger.Info("demo deal already exists", "deal_id", deal.ID)
	case errors.Is(err, domain.ErrNotFound):
		if deal, err = s.createDeal(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("look up demo deal: %w", err)
	}

	reqs, err := s.tracker.SeedDefaults(ctx, deal.ID)
	if err != nil {
		return nil, fmt.Errorf("seed requirements: %w", err)
	}

	s.logger.Info("demo deal ready", "deal_id", deal.ID, "requirements", len(reqs))
	return deal, nil
}

func (s *Seeder) createDeal(ctx context.Context) (*models.Deal, error) {
	clientID := DemoClientID
	deal := &models.Deal{
		ID:        DemoDealID,
		BankID:    DemoBankID,
		ClientID:  &clientID,
		Name:      "Project Atlas",
		Status:    models.DealStatusDiligence,
		CreatedAt: time.Now(),
	}
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("create demo deal: %w", err)
	}
	if err := s.deals.GrantInvestor(ctx, deal.ID, DemoInvestorID); err != nil {
		return nil, fmt.Errorf("grant demo investor: %w", err)
	}

	folderIDs := make(map[string]string)
	for _, f := range demoFolders {
		req := &docsysSvc.CreateFolderRequest{
			DealID:    deal.ID,
			Name:      f.name,
			CreatedBy: DemoUserID,
		}
		if f.parent != "" {
			parentID := folderIDs[f.parent]
			req.ParentID = &parentID
		}
		folder, err := s.tree.CreateFolder(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create folder %s: %w", f.name, err)
		}
		folderIDs[f.name] = folder.ID
	}

	s.logger.Info("demo deal created", "deal_id", deal.ID, "folders", len(folderIDs))
	return deal, nil
}
